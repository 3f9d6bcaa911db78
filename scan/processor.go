// scan/processor.go

// Package scan decides what a badge scan means and applies it.
//
// A scan from someone who already holds an item is always a return of that
// item, whatever was selected on screen. Otherwise it is a checkout of the
// selected item. Identity is resolved before anything is read or written, and
// the checkout log is written only after the item row has changed.
package scan

import (
	"checkout_kiosk/db"
	"checkout_kiosk/directory"
	"checkout_kiosk/models"
	"checkout_kiosk/session"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ItemStore interface {
	FindItemByHolder(ctx context.Context, holder string) (*models.Item, error)
	FindItemByID(ctx context.Context, id int64) (*models.Item, error)
	SetAvailable(ctx context.Context, id int64, holder string) error
	SetCheckedOut(ctx context.Context, id int64, holder, holderName string) error
}

type AuditLog interface {
	AppendLog(ctx context.Context, entry *models.CheckoutLog) error
}

type Request struct {
	ScannedID      string
	SelectedItemID *int64
}

type Processor struct {
	resolver directory.Resolver
	items    ItemStore
	audit    AuditLog
	locker   session.Locker
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*Processor)

func WithLocker(l session.Locker) Option { return func(p *Processor) { p.locker = l } }
func WithLogger(l *zap.Logger) Option    { return func(p *Processor) { p.log = l } }
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func NewProcessor(resolver directory.Resolver, items ItemStore, audit AuditLog, opts ...Option) *Processor {
	p := &Processor{
		resolver: resolver,
		items:    items,
		audit:    audit,
		locker:   session.NopLocker{},
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process handles one scan. It never returns a Go error; every failure is an
// Outcome the caller can show as-is.
func (p *Processor) Process(ctx context.Context, req Request) Outcome {
	if req.ScannedID == "" {
		return failure(ClientError, CodeMissingID, "No ID was scanned.")
	}
	log := p.log.With(zap.String("scan_id", uuid.NewString()), zap.String("scanned_id", req.ScannedID))

	unlock, err := p.locker.Lock(ctx, req.ScannedID)
	if err != nil {
		if errors.Is(err, session.ErrScanInProgress) {
			return failure(Conflict, CodeScanInProgress, "A scan for this ID is already being processed. Please try again.")
		}
		log.Error("scan: lock failed", zap.Error(err))
		return failure(ServerError, CodeLockFailed, "Could not process the scan right now. Please try again.")
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			log.Warn("scan: unlock failed", zap.Error(err))
		}
	}()

	userName, err := p.resolver.Resolve(ctx, req.ScannedID)
	if err != nil {
		log.Warn("scan: identity lookup failed", zap.String("kind", directory.Kind(err)), zap.Error(err))
		return failure(NotFound, CodeInvalidIdentity, fmt.Sprintf("Invalid User ID. (%s)", err))
	}
	log = log.With(zap.String("user_name", userName))

	held, err := p.items.FindItemByHolder(ctx, req.ScannedID)
	switch {
	case err == nil:
		return p.returnItem(ctx, log, held, req.ScannedID, userName)
	case !errors.Is(err, db.ErrItemNotFound):
		log.Error("scan: holder lookup failed", zap.Error(err))
		return failure(ServerError, CodeLookupFailed, "Database error while looking up items.")
	}

	if req.SelectedItemID == nil {
		return failure(ClientError, CodeSelectionRequired,
			"Please select an available item *before* scanning your ID to check out.")
	}
	return p.checkoutItem(ctx, log, *req.SelectedItemID, req.ScannedID, userName)
}

func (p *Processor) returnItem(ctx context.Context, log *zap.Logger, item *models.Item, userID, userName string) Outcome {
	if err := p.items.SetAvailable(ctx, item.ID, userID); err != nil {
		if errors.Is(err, db.ErrItemChanged) {
			return failure(Conflict, CodeAlreadyReturned, fmt.Sprintf("Item \"%s\" has already been returned.", item.Name))
		}
		log.Error("scan: return failed", zap.Int64("item_id", item.ID), zap.Error(err))
		return failure(ServerError, CodeReturnFailed, "Database error while returning item.")
	}
	p.record(ctx, log, item, userID, userName, models.ActionReturned)

	returned := *item
	returned.Status = models.StatusAvailable
	returned.CheckedOutBy = nil
	returned.CheckedOutByName = nil
	log.Info("scan: item returned", zap.Int64("item_id", item.ID))
	return Outcome{
		Kind:    Success,
		Code:    CodeReturned,
		Message: fmt.Sprintf("Thank you, %s. Item \"%s\" has been returned.", userName, item.Name),
		Action:  models.ActionReturned,
		Item:    &returned,
	}
}

func (p *Processor) checkoutItem(ctx context.Context, log *zap.Logger, itemID int64, userID, userName string) Outcome {
	item, err := p.items.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, db.ErrItemNotFound) {
			return failure(NotFound, CodeItemNotFound, "Selected item does not exist.")
		}
		log.Error("scan: item lookup failed", zap.Int64("item_id", itemID), zap.Error(err))
		return failure(ServerError, CodeLookupFailed, "Database error while looking up items.")
	}
	if !item.IsAvailable() {
		return failure(Conflict, CodeItemCheckedOut,
			fmt.Sprintf("Item \"%s\" is already checked out by %s.", item.Name, item.HolderName()))
	}

	if err := p.items.SetCheckedOut(ctx, item.ID, userID, userName); err != nil {
		switch {
		case errors.Is(err, db.ErrItemChanged):
			return failure(Conflict, CodeItemCheckedOut,
				fmt.Sprintf("Item \"%s\" was just checked out by someone else.", item.Name))
		case errors.Is(err, db.ErrHolderBusy):
			return failure(Conflict, CodeHolderBusy,
				"You already have an item checked out. Scan your ID again to return it.")
		}
		log.Error("scan: checkout failed", zap.Int64("item_id", item.ID), zap.Error(err))
		return failure(ServerError, CodeCheckoutFailed, "Database error while checking out item.")
	}
	p.record(ctx, log, item, userID, userName, models.ActionCheckedOut)

	taken := *item
	taken.Status = models.StatusCheckedOut
	taken.CheckedOutBy = &userID
	taken.CheckedOutByName = &userName
	log.Info("scan: item checked out", zap.Int64("item_id", item.ID))
	return Outcome{
		Kind:    Success,
		Code:    CodeCheckedOut,
		Message: fmt.Sprintf("Thank you, %s. You have checked out \"%s\".", userName, item.Name),
		Action:  models.ActionCheckedOut,
		Item:    &taken,
	}
}

// record appends to the checkout log. A failed write is logged and dropped;
// the transition it describes has already happened.
func (p *Processor) record(ctx context.Context, log *zap.Logger, item *models.Item, userID, userName string, action models.Action) {
	entry := &models.CheckoutLog{
		Timestamp: p.now(),
		ItemID:    item.ID,
		ItemName:  item.Name,
		Action:    action,
		UserID:    userID,
		UserName:  userName,
	}
	if err := p.audit.AppendLog(ctx, entry); err != nil {
		log.Error("scan: failed to write checkout log",
			zap.Int64("item_id", item.ID), zap.String("action", string(action)), zap.Error(err))
	}
}
