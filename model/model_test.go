package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestChecklistSerializationRoundTrip(t *testing.T) {
	work := NewChecklist("Work", false)
	work.Tasks = append(work.Tasks, NewTask("write tests", false))
	work.Tasks[0].IsCompleted = true

	wellness := NewChecklist("Wellness", true)
	wellness.Tasks = append(wellness.Tasks, NewTask("stretch", true), NewTask("water", true))

	lists := []Checklist{work, wellness, NewChecklist("Empty", true)}

	data, err := json.Marshal(lists)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var got []Checklist
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if diff := cmp.Diff(lists, got); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskJSONKeys(t *testing.T) {
	task := Task{
		ID:          uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		Title:       "Drink a cup of water",
		IsCompleted: true,
		IsWellness:  true,
	}
	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"id":"7d444840-9dc0-11d1-b245-5ffdce74fad2","title":"Drink a cup of water","isCompleted":true,"isWellness":true}`
	if string(data) != want {
		t.Fatalf("unexpected encoding\nwant=%s\ngot=%s", want, data)
	}
}

func TestNewTaskDefaults(t *testing.T) {
	a := NewTask("A", false)
	b := NewTask("A", false)
	if a.ID == b.ID {
		t.Fatalf("expected fresh ids, got %s twice", a.ID)
	}
	if a.IsCompleted {
		t.Fatalf("expected new task to be open")
	}
}

func TestNewChecklistHasNonNilTasks(t *testing.T) {
	data, err := json.Marshal(NewChecklist("Reading", true))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"tasks":[]`) {
		t.Fatalf("expected empty tasks array, got %s", data)
	}
}

func TestPreferencesLastUpdate(t *testing.T) {
	var p Preferences
	if !p.LastUpdate().IsZero() {
		t.Fatalf("expected zero time for unset timestamp")
	}

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	p.SetLastUpdate(day)
	if !p.LastUpdate().Equal(day) {
		t.Fatalf("expected %v, got %v", day, p.LastUpdate())
	}
}

func TestPreferencesTokenFieldsJSONKeys(t *testing.T) {
	p := Preferences{TokenNum: 4, TodaysLimit: 1}
	if !p.LimitUpdate().IsZero() {
		t.Fatalf("expected zero time for unset limit update")
	}
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	p.SetLimitUpdate(day)

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, key := range []string{`"tokenNum":4`, `"todaysLimit":1`, `"lastLimitUpdate":`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("expected %s in %s", key, data)
		}
	}

	var got Preferences
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !got.LimitUpdate().Equal(day) || got.TokenNum != 4 || got.TodaysLimit != 1 {
		t.Fatalf("unexpected round trip %+v", got)
	}
}
