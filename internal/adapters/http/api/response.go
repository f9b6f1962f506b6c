package api

import (
	"time"

	"github.com/tourstat/compass/internal/app"
	"github.com/tourstat/compass/internal/domain/model"
)

// Response shapes. Nullable scalars encode as JSON null via pointers.

type resultResponse struct {
	RunID     string                  `json:"run_id"`
	ReportID  string                  `json:"report_id"`
	StartedAt time.Time               `json:"started_at"`
	Duration  string                  `json:"duration"`
	Excluded  []string                `json:"excluded,omitempty"`
	Schemes   []schemeResponse        `json:"schemes"`
	Peers     map[string][]peerEntry  `json:"peers,omitempty"`
}

type schemeResponse struct {
	SchemeID string     `json:"scheme_id"`
	Rows     []rowEntry `json:"rows"`
}

type rowEntry struct {
	EntityID   string              `json:"entity_id"`
	Rank       int                 `json:"rank,omitempty"`
	Score      *float64            `json:"score"`
	Bucket     int                 `json:"bucket,omitempty"`
	Label      string              `json:"label,omitempty"`
	Indicators map[string]*float64 `json:"indicators"`
	Normalized map[string]*float64 `json:"normalized"`
}

type peerEntry struct {
	EntityID string  `json:"entity_id"`
	Distance float64 `json:"distance"`
}

func toResultResponse(res *app.Result) resultResponse {
	out := resultResponse{
		RunID:     res.RunID,
		ReportID:  res.ReportID,
		StartedAt: res.StartedAt,
		Duration:  res.Duration.String(),
		Excluded:  res.Excluded,
	}
	for _, sr := range res.Schemes {
		sch := schemeResponse{SchemeID: sr.SchemeID, Rows: make([]rowEntry, len(sr.Rows))}
		for i, row := range sr.Rows {
			sch.Rows[i] = rowEntry{
				EntityID:   row.EntityID,
				Rank:       row.Rank,
				Score:      scalarPtr(row.Score),
				Bucket:     row.Bucket,
				Label:      row.Label,
				Indicators: scalarMap(row.Indicators),
				Normalized: scalarMap(row.Normalized),
			}
		}
		out.Schemes = append(out.Schemes, sch)
	}
	if len(res.Peers) > 0 {
		out.Peers = make(map[string][]peerEntry, len(res.Peers))
		for id, peers := range res.Peers {
			entries := make([]peerEntry, len(peers))
			for i, p := range peers {
				entries[i] = peerEntry{EntityID: p.EntityID, Distance: p.Distance}
			}
			out.Peers[id] = entries
		}
	}
	return out
}

func scalarPtr(s model.Scalar) *float64 {
	if !s.Valid {
		return nil
	}
	v := s.Float64
	return &v
}

func scalarMap(in map[string]model.Scalar) map[string]*float64 {
	out := make(map[string]*float64, len(in))
	for k, v := range in {
		out[k] = scalarPtr(v)
	}
	return out
}
