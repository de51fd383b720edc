// Package roster drives a complete scrape: log in, list the course rooms,
// then collect the enrollment ids of every room's members.
package roster

import (
	"context"
	"fmt"
	"strings"
	"ufsc-matriculas/internal/components/telemetry"
	"ufsc-matriculas/internal/scrapers/cagr"
	"ufsc-matriculas/pkg/textutil"
)

const (
	report_roster_run        = "roster.run"
	report_roster_list_rooms = "roster.list-rooms"
	report_roster_room       = "roster.room"
)

// DefaultBatchSize is the largest amount of ids Moodle is known to import in
// one go.
const DefaultBatchSize = 5000

// Scraper is the part of a cagr.Session a run needs.
type Scraper interface {
	ListRooms(ctx context.Context) ([]cagr.Room, error)
	ListStudentIds(ctx context.Context, roomId cagr.RoomId) ([]cagr.StudentId, error)
}

// LoginFunc authenticates and returns a ready Scraper.
type LoginFunc func(ctx context.Context, username, password string) (Scraper, error)

// CagrLogin returns a LoginFunc that logs into the real forum.
func CagrLogin(opts cagr.Options) LoginFunc {
	return func(ctx context.Context, username, password string) (Scraper, error) {
		session, err := cagr.Login(ctx, username, password, opts)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

// ProgressFunc is called before the members of each room are listed, with
// done being the amount of rooms already listed. It is called one last time
// with done == total and a zero Room when everything is finished.
type ProgressFunc func(done, total int, room cagr.Room)

type Request struct {
	Username string
	Password string
	// Prefix keeps only the ids starting with it (case sensitive).
	Prefix string
	// RoomFilter keeps only the rooms whose name contains one of these,
	// ignoring case and whitespace. Empty means every room.
	RoomFilter []string
}

type Result struct {
	Prefix string
	Rooms  []cagr.Room
	// StudentIds are the ids that matched Prefix, in the order they were
	// found.
	StudentIds []cagr.StudentId
	// Total is the amount of ids found before filtering.
	Total int
}

type Runner struct {
	Login    LoginFunc
	Progress ProgressFunc
	tel      telemetry.API
}

func NewRunner(login LoginFunc, tel telemetry.API) Runner {
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	return Runner{
		Login: login,
		tel:   telemetry.NewScopedAPI("roster", tel),
	}
}

func (r Runner) progress(done, total int, room cagr.Room) {
	if r.Progress != nil {
		r.Progress(done, total, room)
	}
}

// Run performs the whole scrape sequentially. Authentication failures come
// back as cagr.ErrAuth.
func (r Runner) Run(ctx context.Context, req Request) (Result, error) {
	scraper, err := r.Login(ctx, req.Username, req.Password)
	if err != nil {
		r.tel.ReportWarning(report_roster_run, fmt.Errorf("login: %w", err))
		return Result{}, err
	}

	rooms, err := scraper.ListRooms(ctx)
	if err != nil {
		r.tel.ReportBroken(report_roster_list_rooms, err)
		return Result{}, fmt.Errorf("list rooms: %w", err)
	}
	rooms = FilterRooms(rooms, req.RoomFilter)
	r.tel.ReportCount(report_roster_list_rooms, int64(len(rooms)))

	var ids []cagr.StudentId
	for i, room := range rooms {
		r.progress(i, len(rooms), room)

		roomIds, err := scraper.ListStudentIds(ctx, room.Id)
		if err != nil {
			r.tel.ReportBroken(report_roster_room, err, room.Id, room.Name)
			return Result{}, fmt.Errorf("list students of %s (%s): %w", room.Name, room.Id, err)
		}
		ids = append(ids, roomIds...)
	}
	r.progress(len(rooms), len(rooms), cagr.Room{})

	filtered := FilterByPrefix(ids, req.Prefix)
	r.tel.ReportDebug("run finished", "rooms", len(rooms), "ids", len(ids), "filtered", len(filtered))

	return Result{
		Prefix:     req.Prefix,
		Rooms:      rooms,
		StudentIds: filtered,
		Total:      len(ids),
	}, nil
}

// FilterRooms keeps the rooms whose name matches one of the filters, see
// textutil.MatchName.
func FilterRooms(rooms []cagr.Room, filters []string) []cagr.Room {
	if len(filters) == 0 {
		return rooms
	}
	out := []cagr.Room{}
	for _, room := range rooms {
		if textutil.MatchName(room.Name, filters) {
			out = append(out, room)
		}
	}
	return out
}

// FilterByPrefix keeps the ids starting with prefix, in their original
// order. An empty prefix keeps everything.
func FilterByPrefix(ids []cagr.StudentId, prefix string) []cagr.StudentId {
	out := []cagr.StudentId{}
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	return out
}
