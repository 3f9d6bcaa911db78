// controllers/scan_controller.go
package controllers

import (
	"bytes"
	"checkout_kiosk/scan"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type ScanController struct{ *Srv }

func NewScanController(s *Srv) *ScanController { return &ScanController{Srv: s} }

type scanRequest struct {
	ScannedID      BadgeID    `json:"scannedId"`
	SelectedItemID OptionalID `json:"selectedItemId"`
}

// BadgeID accepts a string or a bare number; some scanners emit digits only.
type BadgeID string

func (b *BadgeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = BadgeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*b = ""
		return nil
	}
	*b = BadgeID(n.String())
	return nil
}

// OptionalID accepts a number, a numeric string, null or "". Zero counts as
// no selection, like an empty <select>.
type OptionalID struct {
	Value int64
	Set   bool
}

// unknownItemID is used for selections that are not numbers; no item has it.
const unknownItemID = -1

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	*o = OptionalID{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		o.Value, o.Set = unknownItemID, true
		return nil
	}
	if n == 0 {
		return nil
	}
	o.Value, o.Set = n, true
	return nil
}

func (o OptionalID) Ptr() *int64 {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

// POST /scan
func (sc *ScanController) Scan(c *gin.Context) {
	var in scanRequest
	// a body that does not parse is handled like one without scannedId
	_ = c.ShouldBindJSON(&in)

	out := sc.Processor.Process(c.Request.Context(), scan.Request{
		ScannedID:      strings.TrimSpace(string(in.ScannedID)),
		SelectedItemID: in.SelectedItemID.Ptr(),
	})
	c.JSON(out.Kind.HTTPStatus(), scanResponse(out))
}

func scanResponse(out scan.Outcome) gin.H {
	if out.OK() {
		return gin.H{
			"message": out.Message,
			"type":    "success",
			"action":  out.Action,
			"item":    out.Item,
		}
	}
	body := gin.H{"error": out.Message, "code": out.Code}
	switch out.Kind {
	case scan.ClientError, scan.Conflict:
		body["type"] = "error"
	}
	return body
}
