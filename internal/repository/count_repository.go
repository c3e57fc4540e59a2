package repository

import (
	"context"

	"pos/internal/domain/model"
)

type InventoryCountRepository interface {
	//IN_PROGRESS行の部分一意インデックスに当たったらErrConflict
	Create(ctx context.Context, c model.InventoryCount) (int64, error)
	FindByID(ctx context.Context, id int64) (model.InventoryCount, error)

	//行ロック付き取得。明細追加・確定・中止はこちらを使う
	FindByIDForUpdate(ctx context.Context, id int64) (model.InventoryCount, error)

	//進行中の棚卸（system-wideで最大1つ）
	FindInProgress(ctx context.Context) (model.InventoryCount, bool, error)

	AddItem(ctx context.Context, item model.InventoryCountItem) error
	ListItems(ctx context.Context, countID int64) ([]model.InventoryCountItem, error)

	//集計列とステータス・完了情報を更新。
	//IN_PROGRESSの行だけ更新し、対象がなければErrNotFound
	Update(ctx context.Context, c model.InventoryCount) error

	List(ctx context.Context, page int, limit int) ([]model.InventoryCount, int64, error)
}
