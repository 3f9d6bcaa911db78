// models/item.go
package models

import "time"

const ItemTable = "items"
const CheckoutLogTable = "checkout_log"

type Status string

const (
	StatusAvailable  Status = "Available"
	StatusCheckedOut Status = "Checked Out"
)

// Item uses the camelCase column names of existing checkout.db files.
// CheckedOutBy and CheckedOutByName are nil exactly when Status is Available.
type Item struct {
	ID               int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name             string  `gorm:"column:name;size:200;not null" json:"name"`
	Status           Status  `gorm:"column:status;size:20;not null;default:'Available'" json:"status"`
	CheckedOutBy     *string `gorm:"column:checkedOutBy;size:120;uniqueIndex:idx_items_checked_out_by" json:"checkedOutBy"`
	CheckedOutByName *string `gorm:"column:checkedOutByName;size:255" json:"checkedOutByName"`
}

func (Item) TableName() string { return ItemTable }

func (it Item) IsAvailable() bool { return it.Status == StatusAvailable }

// HolderName returns the display name of the current holder, or "".
func (it Item) HolderName() string {
	if it.CheckedOutByName == nil {
		return ""
	}
	return *it.CheckedOutByName
}

type Action string

const (
	ActionCheckedOut Action = "Checked Out"
	ActionReturned   Action = "Returned"
)

// CheckoutLog is append-only; item_name is a snapshot taken at the time of the action.
type CheckoutLog struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Timestamp time.Time `gorm:"column:timestamp;index;not null" json:"timestamp"`
	ItemID    int64     `gorm:"column:item_id;index;not null" json:"itemId"`
	ItemName  string    `gorm:"column:item_name;size:200;not null" json:"itemName"`
	Action    Action    `gorm:"column:action;size:20;not null" json:"action"`
	UserID    string    `gorm:"column:user_id;size:120;not null" json:"userId"`
	UserName  string    `gorm:"column:user_name;size:255;not null" json:"userName"`
}

func (CheckoutLog) TableName() string { return CheckoutLogTable }
