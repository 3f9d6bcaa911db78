// controllers/srv.go
package controllers

import (
	"checkout_kiosk/db"
	"checkout_kiosk/scan"

	"go.uber.org/zap"
)

// Srv holds what the handlers share.
type Srv struct {
	Repo      *db.Repo
	Processor *scan.Processor
	Log       *zap.Logger
}

func NewSrv(repo *db.Repo, processor *scan.Processor, log *zap.Logger) *Srv {
	if log == nil {
		log = zap.NewNop()
	}
	return &Srv{Repo: repo, Processor: processor, Log: log}
}
