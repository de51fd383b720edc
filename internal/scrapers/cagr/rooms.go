package cagr

import (
	"context"
	"fmt"
	"strings"
	"ufsc-matriculas/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	roomSearchPath     = "formularioBusca.jsf"
	roomSearchSelector = "form#buscaSala"
	roomCellSelector   = "td.coluna1_listar_salas"
	roomIdParam        = "salaId="
	roomNamePrefix     = "**Graduandos do Curso: "
)

// roomSearchFields are the values the JSF search form expects in order to
// list only undergraduate course rooms. The field names are generated by the
// server and must be sent exactly as they are.
var roomSearchFields = [][2]string{
	{"buscaSala", "buscaSala"},
	{"buscaSala:j_id_jsp_632900747_29", "graduandos"},
	{"buscaSala:j_id_jsp_632900747_34", "Buscar"},
	{"javax.faces.ViewState", "j_id1"},
}

// ListRooms searches the forum for every undergraduate course room. The
// result is in the order the forum lists them, an empty result is not an
// error.
func (s *Session) ListRooms(ctx context.Context) ([]Room, error) {
	endpoint := s.forumEndpoint(roomSearchPath)

	_, err := s.open(ctx, endpoint, nil)
	if err != nil {
		s.tel.ReportBroken(report_session_list_rooms, err)
		return nil, err
	}
	if s.onLoginPage() {
		s.tel.ReportWarning(report_session_list_rooms, "redirected to login", endpoint)
		return nil, ErrSessionExpired
	}

	form, err := htmlutil.FindForm(s.page, s.pageUrl, roomSearchSelector)
	if err != nil {
		s.tel.ReportBroken(report_session_list_rooms, err, endpoint)
		return nil, fmt.Errorf("cagr: list rooms: %w", err)
	}
	for _, field := range roomSearchFields {
		form.Set(field[0], field[1])
	}

	_, err = s.submit(ctx, form)
	if err != nil {
		s.tel.ReportBroken(report_session_list_rooms, err)
		return nil, err
	}

	rooms := ParseRooms(s.page)
	if len(rooms) == 0 && s.onLoginPage() {
		s.tel.ReportWarning(report_session_list_rooms, "redirected to login after search")
		return nil, ErrSessionExpired
	}
	s.tel.ReportCount(report_session_list_rooms, int64(len(rooms)))
	return rooms, nil
}

// ParseRooms extracts the rooms out of a room search result page.
func ParseRooms(doc *goquery.Document) []Room {
	rooms := []Room{}
	doc.Find(roomCellSelector).Each(func(_ int, cell *goquery.Selection) {
		link := cell.Find("a").First()
		if link.Length() == 0 {
			return
		}
		rooms = append(rooms, Room{
			Id:   roomIdFromHref(link.AttrOr("href", "")),
			Name: roomName(htmlutil.GetText(link.Nodes[0])),
		})
	})
	return rooms
}

func roomIdFromHref(href string) RoomId {
	idx := strings.LastIndex(href, roomIdParam)
	if idx < 0 {
		return href
	}
	return href[idx+len(roomIdParam):]
}

func roomName(text string) string {
	return strings.ReplaceAll(strings.TrimSpace(text), roomNamePrefix, "")
}
