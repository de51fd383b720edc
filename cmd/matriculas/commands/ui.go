package commands

import (
	"fmt"
	"io"
	"os"
	"time"
	"ufsc-matriculas/internal/roster"
	"ufsc-matriculas/internal/scrapers/cagr"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func renderRooms(out io.Writer, rooms []cagr.Room) {
	t := newTable(out)
	t.AppendHeader(table.Row{"#", "salaId", "Curso"})
	for i, room := range rooms {
		t.AppendRow(table.Row{i + 1, room.Id, room.Name})
	}
	t.AppendFooter(table.Row{"", "Total", len(rooms)})
	t.Render()
}

// roomProgress renders a progress bar on stderr while the members of each
// room are listed.
type roomProgress struct {
	writer  progress.Writer
	tracker *progress.Tracker
}

func newRoomProgress() *roomProgress {
	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stderr)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Visibility.ETA = true
	return &roomProgress{writer: pw}
}

func (p *roomProgress) update(done, total int, room cagr.Room) {
	if p.tracker == nil {
		p.tracker = &progress.Tracker{
			Message: "Listando estudantes",
			Total:   int64(total),
			Units:   progress.UnitsDefault,
		}
		p.writer.AppendTracker(p.tracker)
		go p.writer.Render()
	}

	p.tracker.SetValue(int64(done))
	if done >= total {
		p.tracker.MarkAsDone()
		return
	}
	p.tracker.UpdateMessage(fmt.Sprintf("Listando estudantes de %s...", room.Name))
}

func (p *roomProgress) stop() {
	if p.tracker == nil {
		return
	}
	p.writer.Stop()
	for p.writer.IsRenderInProgress() {
		time.Sleep(time.Millisecond * 10)
	}
}

// batchWarning explains why the output is split into files of at most
// batchSize ids.
func batchWarning(batchSize int) string {
	return fmt.Sprintf(
		"Atenção: o Moodle pode engasgar se tentar engolir muitos números de matrícula de uma só vez, por isso cada arquivo tem no máximo %d. %d por vez é um número que sabemos que funciona.",
		batchSize,
		roster.DefaultBatchSize,
	)
}
