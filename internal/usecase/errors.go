package usecase

import (
	"errors"
	"fmt"
	"time"

	"pos/internal/domain/model"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 認証済みの操作者。
// middlewareがトークン（またはレガシーヘッダ）から組み立ててhandlerに渡す。
type Actor struct {
	ID   int64
	Name string
	Role model.Role
}

// usecaseに渡す時計の約束（テストで固定できるように）
type Clock interface {
	Now() time.Time
}

// 入力PINと保存したハッシュを比べる約束
type PINVerifier interface {
	Verify(plain string, hashed string) bool
}

// PINをハッシュ化する約束（スタッフ登録用）
type PINHasher interface {
	Hash(plain string) (string, error)
}
