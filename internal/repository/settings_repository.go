package repository

import (
	"context"

	"pos/internal/domain/model"
)

// 店舗設定（1行テーブル）の読み書きの約束。
type SettingsRepository interface {
	//設定スナップショットを取得（行がなければデフォルト値を作る）
	Get(ctx context.Context) (model.Settings, error)
	Update(ctx context.Context, s model.Settings) error
}
