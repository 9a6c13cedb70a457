package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"factoryplan/internal/domain/matrix"
	"factoryplan/internal/domain/phase"
	"factoryplan/internal/domain/profile"
)

// rawBody defers decoding for endpoints whose response shape varies.
type rawBody = json.RawMessage

func isNull(raw rawBody) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func firstByte(raw rawBody) byte {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return 0
	}
	return t[0]
}

// decodeProductSections accepts an array, a {"sections": [...]} envelope or a single object.
func decodeProductSections(raw rawBody) ([]profile.ProductSection, error) {
	out := []profile.ProductSection{}
	if isNull(raw) {
		return out, nil
	}
	switch firstByte(raw) {
	case '[':
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decoding product sections: %w", err)
		}
		return out, nil
	case '{':
		var env struct {
			Sections *[]profile.ProductSection `json:"sections"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decoding product sections: %w", err)
		}
		if env.Sections != nil {
			return append(out, (*env.Sections)...), nil
		}
		var one profile.ProductSection
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("decoding product section: %w", err)
		}
		return append(out, one), nil
	}
	return nil, fmt.Errorf("decoding product sections: unexpected body %q", truncate(raw))
}

// decodeCategories accepts an array or a {"categories": [...]} envelope.
func decodeCategories(raw rawBody) ([]matrix.Category, error) {
	out := []matrix.Category{}
	if isNull(raw) {
		return out, nil
	}
	switch firstByte(raw) {
	case '[':
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decoding matrix categories: %w", err)
		}
		return out, nil
	case '{':
		var env struct {
			Categories []matrix.Category `json:"categories"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decoding matrix categories: %w", err)
		}
		return append(out, env.Categories...), nil
	}
	return nil, fmt.Errorf("decoding matrix categories: unexpected body %q", truncate(raw))
}

// decodeTitles accepts ["a", "b"] or [{"title": "a"}, ...].
func decodeTitles(raw rawBody) ([]string, error) {
	out := []string{}
	if isNull(raw) {
		return out, nil
	}
	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return append(out, plain...), nil
	}
	var objs []struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil, fmt.Errorf("decoding category titles: %w", err)
	}
	for _, o := range objs {
		if o.Title != "" {
			out = append(out, o.Title)
		}
	}
	return out, nil
}

func truncate(raw rawBody) string {
	const limit = 80
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}

func sortPhases(ps []phase.Phase) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].PhaseNo < ps[j].PhaseNo })
}

func sortSubphases(ss []phase.Subphase) {
	sort.SliceStable(ss, func(i, j int) bool { return ss[i].OrderNumber < ss[j].OrderNumber })
}
