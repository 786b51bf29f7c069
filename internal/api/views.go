package api

import "github.com/dgallion1/docview/internal/findings"

// findingView is a finding prepared for the viewer: markdown rendered to
// sanitized HTML, geometry details left to /api/state.
type findingView struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DescriptionHTML string `json:"description_html"`
	Page            int    `json:"page"`
	HasAnchor       bool   `json:"has_anchor"`
}

type evidenceView struct {
	ID        string `json:"id"`
	FindingID string `json:"finding_id"`
	Quote     string `json:"quote"`
	Page      int    `json:"page"`
}

type analysisView struct {
	HTML string `json:"html"`
}

type payloadViews struct {
	findings []findingView
	evidence []evidenceView
	analysis []analysisView
}

func buildViews(p *findings.Payload) payloadViews {
	v := payloadViews{
		findings: make([]findingView, 0, len(p.Findings)),
		evidence: make([]evidenceView, 0, len(p.Evidence)),
		analysis: make([]analysisView, 0, len(p.Analysis)),
	}
	for _, f := range p.Findings {
		v.findings = append(v.findings, findingView{
			ID:              f.ID,
			Title:           f.Title,
			DescriptionHTML: findings.RenderHTML(f.Description),
			Page:            f.Page,
			HasAnchor:       f.AnchorText != "",
		})
	}
	for _, e := range p.Evidence {
		v.evidence = append(v.evidence, evidenceView{
			ID:        e.ID,
			FindingID: e.FindingID,
			Quote:     findings.ExcerptText(e.Quote),
			Page:      e.Page,
		})
	}
	for _, a := range p.Analysis {
		v.analysis = append(v.analysis, analysisView{HTML: findings.RenderHTML(a.Text)})
	}
	return v
}
