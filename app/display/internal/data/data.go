package data

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/storage"
	"github.com/iWorld-y/trade_compass/app/display/internal/conf"
)

// Data 数据层资源，未配置数据库时 store 为 nil
type Data struct {
	store *storage.Storage
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	if c == nil || c.Database == nil || c.Database.Driver == "" {
		helper.Warn("database is not configured, history is disabled")
		return &Data{}, func() {}, nil
	}

	store, err := storage.Open(context.Background(), c.Database.Driver, c.Database.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s database: %w", c.Database.Driver, err)
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		store.Close()
	}
	return &Data{store: store}, cleanup, nil
}

// Store 返回分析结果存储，可能为 nil
func (d *Data) Store() *storage.Storage {
	return d.store
}
