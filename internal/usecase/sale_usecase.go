package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pos/internal/audit"
	"pos/internal/domain/model"
	"pos/internal/refid"
	repo "pos/internal/repository"
)

type SaleUsecase struct {
	tx    repo.TransactionManager
	clock Clock
	audit audit.Publisher
}

func NewSaleUsecase(tx repo.TransactionManager, clock Clock, auditPub audit.Publisher) *SaleUsecase {
	return &SaleUsecase{tx: tx, clock: clock, audit: auditPub}
}

type SaleItemInput struct {
	ProductID int64
	Quantity  int64
}

type CreateSaleInput struct {
	Items          []SaleItemInput
	PaymentMethod  string
	IdempotencyKey string
}

type SaleItemOutput struct {
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	Barcode        string `json:"barcode"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int64  `json:"quantity"`
}

type SaleOutput struct {
	ID            int64            `json:"id"`
	SaleNumber    string           `json:"sale_number"`
	EmployeeID    int64            `json:"employee_id"`
	TotalCents    int64            `json:"total_cents"`
	PaymentMethod string           `json:"payment_method"`
	Items         []SaleItemOutput `json:"items"`
}

// 販売を確定する。
// 在庫減算は条件付きUPDATEなので、同時リクエストでも在庫はマイナスにならない。
// 明細は商品名・バーコード・単価のスナップショットを保存する。
func (u *SaleUsecase) CreateSale(ctx context.Context, actor Actor, in CreateSaleInput) (SaleOutput, error) {
	if actor.ID <= 0 {
		return SaleOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Items) == 0 {
		return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "items required")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 {
			return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
		}
		if it.Quantity <= 0 {
			return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be > 0")
		}
	}

	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}
	reqHash := saleRequestHash(in.Items, paymentMethod)

	var out SaleOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じキー・同じ本文なら同じ販売を返す（端末の再送対策）。
		//同じキーで本文が違うならクライアントのバグなので409
		existing, found, err := r.Sales().FindByIdempotencyKey(ctx, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			if existing.RequestHash != reqHash {
				return NewHTTPError(http.StatusConflict, "idempotency key reused with different request")
			}
			items, err := r.SaleItems().ListBySaleID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toSaleOutput(existing, items)
			return nil
		}

		now := u.clock.Now()
		saleItems := make([]model.SaleItem, 0, len(in.Items))
		var total int64 = 0

		for _, it := range in.Items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}

			//在庫減算（足りなければfalse）
			ok, err := r.Inventory().AdjustStockIfNonNegative(ctx, p.ID, -it.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			//スナップショット
			saleItems = append(saleItems, model.SaleItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				BarcodeSnapshot:     p.Barcode,
				UnitPriceCents:      p.PriceCents,
				Quantity:            it.Quantity,
				CreatedAt:           now,
			})

			total += p.PriceCents * it.Quantity
		}

		sale := model.Sale{
			SaleNumber:     refid.New("SALE", now),
			EmployeeID:     actor.ID,
			TotalCents:     total,
			PaymentMethod:  paymentMethod,
			IdempotencyKey: key,
			RequestHash:    reqHash,
			CreatedAt:      now,
		}
		saleID, err := r.Sales().Create(ctx, sale)
		if err != nil {
			//競合（同時で同じキーが入った等）はもう一度検索して、本文が同じなら同じ結果を返す
			ex2, found2, err2 := r.Sales().FindByIdempotencyKey(ctx, key)
			if err2 == nil && found2 {
				if ex2.RequestHash != reqHash {
					return NewHTTPError(http.StatusConflict, "idempotency key reused with different request")
				}
				items2, err3 := r.SaleItems().ListBySaleID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toSaleOutput(ex2, items2)
				return nil
			}
			return NewHTTPError(http.StatusConflict, "idempotency conflict")
		}

		if err := r.SaleItems().CreateBulk(ctx, saleID, saleItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		sale.ID = saleID
		out = toSaleOutput(sale, saleItems)
		return nil
	})
	if err != nil {
		return SaleOutput{}, err
	}

	u.audit.Publish(audit.Event{
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       model.AuditActionCreateSale,
		ResourceType: model.AuditResourceSale,
		ResourceID:   out.ID,
		Details: map[string]interface{}{
			"sale_number": out.SaleNumber,
			"item_count":  len(out.Items),
			"total_cents": out.TotalCents,
		},
	})

	return out, nil
}

func (u *SaleUsecase) GetSale(ctx context.Context, saleID int64) (SaleOutput, error) {
	if saleID <= 0 {
		return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out SaleOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Sales().FindByID(ctx, saleID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.SaleItems().ListBySaleID(ctx, saleID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toSaleOutput(s, items)
		return nil
	})
	if err != nil {
		return SaleOutput{}, err
	}
	return out, nil
}

type SaleListOutput struct {
	Items []model.Sale `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func (u *SaleUsecase) ListSales(ctx context.Context, page int, limit int) (SaleListOutput, error) {
	if page < 1 {
		return SaleListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return SaleListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out SaleListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		sales, total, err := r.Sales().List(ctx, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = SaleListOutput{Items: sales, Total: total, Page: page, Limit: limit}
		return nil
	})
	if err != nil {
		return SaleListOutput{}, err
	}
	return out, nil
}

// 支払い方法と明細（順序込み）からリクエスト本文のハッシュを作る
func saleRequestHash(items []SaleItemInput, paymentMethod string) string {
	h := sha256.New()
	fmt.Fprintf(h, "pm=%s", paymentMethod)
	for _, it := range items {
		fmt.Fprintf(h, "|%d:%d", it.ProductID, it.Quantity)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func toSaleOutput(s model.Sale, items []model.SaleItem) SaleOutput {
	outItems := make([]SaleItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, SaleItemOutput{
			ProductID:      it.ProductID,
			Name:           it.ProductNameSnapshot,
			Barcode:        it.BarcodeSnapshot,
			UnitPriceCents: it.UnitPriceCents,
			Quantity:       it.Quantity,
		})
	}

	return SaleOutput{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		EmployeeID:    s.EmployeeID,
		TotalCents:    s.TotalCents,
		PaymentMethod: s.PaymentMethod,
		Items:         outItems,
	}
}
