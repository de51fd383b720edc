package cagr

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	memberListPath     = "listarMembros.jsf"
	memberCellSelector = "td.coluna2_listar_membros"
)

// ListStudentIds lists the enrollment ids of the members of a room in the
// order the forum shows them, an empty result is not an error.
func (s *Session) ListStudentIds(ctx context.Context, roomId RoomId) ([]StudentId, error) {
	endpoint := s.forumEndpoint(memberListPath)

	_, err := s.open(ctx, endpoint, url.Values{"salaId": {roomId}})
	if err != nil {
		s.tel.ReportBroken(report_session_list_student_ids, err, roomId)
		return nil, err
	}

	ids := ParseStudentIds(s.page)
	if len(ids) == 0 && s.onLoginPage() {
		s.tel.ReportWarning(report_session_list_student_ids, "redirected to login", roomId)
		return nil, ErrSessionExpired
	}
	return ids, nil
}

// ParseStudentIds extracts the enrollment ids out of a member listing page.
func ParseStudentIds(doc *goquery.Document) []StudentId {
	ids := []StudentId{}
	doc.Find(memberCellSelector).Each(func(_ int, cell *goquery.Selection) {
		ids = append(ids, strings.TrimSpace(cell.Text()))
	})
	return ids
}
