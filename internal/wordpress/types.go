package wordpress

import "encoding/json"

// Item is one entry from a collection endpoint, flattened from the WP
// response shape. Parent is 0 for top-level items.
type Item struct {
	ID      int
	Title   string
	Content string
	Parent  int
}

// wpItem is the wire shape of a collection entry.
type wpItem struct {
	ID      int      `json:"id"`
	Title   rendered `json:"title"`
	Content rendered `json:"content"`
	Parent  int      `json:"parent"`
}

// rendered accepts both a bare string and WordPress's {"rendered": "..."}
// object form for title/content fields.
type rendered string

func (r *rendered) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = rendered(s)
		return nil
	}
	var obj struct {
		Rendered string `json:"rendered"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = rendered(obj.Rendered)
	return nil
}
