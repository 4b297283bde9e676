package models

import (
	"bytes"
	"encoding/json"
)

// MetricSet is one app or web property. Values are free-form because the
// document is also edited by hand.
type MetricSet map[string]any

// KPIDocument is the document written to kpi_data.json. Keys other than the
// four below are kept in Extra and written back unchanged.
type KPIDocument struct {
	Comment   string               `json:"_comment,omitempty"`
	UpdatedAt string               `json:"updated_at"`
	Apps      map[string]MetricSet `json:"apps"`
	Web       map[string]MetricSet `json:"web"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON accepts any JSON object. A known key holding a value of the
// wrong type is kept verbatim in Extra instead of failing the document.
func (d *KPIDocument) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*d = KPIDocument{}
	for key, raw := range fields {
		var ok bool
		switch key {
		case "_comment":
			ok = decodeStrict(raw, &d.Comment)
		case "updated_at":
			ok = decodeStrict(raw, &d.UpdatedAt)
		case "apps":
			ok = decodeStrict(raw, &d.Apps)
		case "web":
			ok = decodeStrict(raw, &d.Web)
		}
		if !ok {
			if d.Extra == nil {
				d.Extra = map[string]json.RawMessage{}
			}
			d.Extra[key] = raw
		}
	}
	return nil
}

func (d KPIDocument) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+4)
	for k, v := range d.Extra {
		out[k] = v
	}
	if d.Comment != "" {
		out["_comment"] = d.Comment
	}
	if _, kept := d.Extra["updated_at"]; d.UpdatedAt != "" || !kept {
		out["updated_at"] = d.UpdatedAt
	}
	if _, kept := d.Extra["apps"]; d.Apps != nil || !kept {
		out["apps"] = d.Apps
	}
	if _, kept := d.Extra["web"]; d.Web != nil || !kept {
		out["web"] = d.Web
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decodeStrict[T any](raw json.RawMessage, dst *T) bool {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	*dst = v
	return true
}

// AppTarget identifies an app tracked in Firebase.
type AppTarget struct {
	Name     string   `json:"name"`
	Platform Platform `json:"platform"`
	StoreID  string   `json:"store_id"`
}
