package cagr

import (
	"strings"
	"testing"

	_ "embed"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/rooms.html
var roomsPage string

//go:embed testdata/members.html
var membersPage string

//go:embed testdata/empty.html
var emptyPage string

func parseDoc(t testing.TB, contents string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contents))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestParseRooms(t *testing.T) {
	rooms := ParseRooms(parseDoc(t, roomsPage))

	expected := []Room{
		{Id: "123", Name: "Engenharia"},
		{Id: "4567", Name: "Ciências da Computação"},
		{Id: "89", Name: "Sala sem prefixo"},
	}
	if diff := cmp.Diff(expected, rooms); diff != "" {
		t.Fatalf("rooms mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRoomsSingleAnchor(t *testing.T) {
	doc := parseDoc(t, `<table><tr><td class="coluna1_listar_salas"><a href="x.jsf?salaId=123">**Graduandos do Curso: Engenharia</a></td></tr></table>`)
	require.Equal(t, []Room{{Id: "123", Name: "Engenharia"}}, ParseRooms(doc))
}

func TestParseRoomsFirstAnchor(t *testing.T) {
	doc := parseDoc(t, `<table><tr>
		<td class="coluna1_listar_salas"><a href="x.jsf?salaId=1">**Graduandos do Curso: Medicina</a> <a href="x.jsf?salaId=2">outra</a></td>
		<td class="coluna1_listar_salas"><a>Sem href</a></td>
		<td class="coluna1_listar_salas"><span>sem link</span></td>
	</tr></table>`)
	require.Equal(t, []Room{
		{Id: "1", Name: "Medicina"},
		{Id: "", Name: "Sem href"},
	}, ParseRooms(doc))
}

func TestParseStudentIds(t *testing.T) {
	ids := ParseStudentIds(parseDoc(t, membersPage))
	require.Equal(t, []StudentId{"20201001", "20201002", "19512345"}, ids)
}

func TestParseEmpty(t *testing.T) {
	doc := parseDoc(t, emptyPage)

	rooms := ParseRooms(doc)
	require.NotNil(t, rooms)
	require.Empty(t, rooms)

	ids := ParseStudentIds(doc)
	require.NotNil(t, ids)
	require.Empty(t, ids)
}

func TestParseIdempotent(t *testing.T) {
	roomsDoc := parseDoc(t, roomsPage)
	require.Equal(t, ParseRooms(roomsDoc), ParseRooms(roomsDoc))

	membersDoc := parseDoc(t, membersPage)
	require.Equal(t, ParseStudentIds(membersDoc), ParseStudentIds(membersDoc))
}

func TestRoomIdFromHref(t *testing.T) {
	table := []struct {
		href     string
		expected RoomId
	}{
		{href: "x.jsf?salaId=123", expected: "123"},
		{href: "/a/b.jsf?cid=1&salaId=77", expected: "77"},
		{href: "x.jsf?salaId=1&salaId=2", expected: "2"},
		{href: "x.jsf?id=5", expected: "x.jsf?id=5"},
	}
	for _, row := range table {
		require.Equal(t, row.expected, roomIdFromHref(row.href))
	}
}
