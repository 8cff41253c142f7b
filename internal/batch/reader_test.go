package batch

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestReader_InvalidFile(t *testing.T) {
	file := strings.NewReader("invalid file content")

	reader := NewReader(file, newTestLogger())
	ch := reader.ReadAll(context.Background())

	count := 0
	for record := range ch {
		count++
		if record.Error == nil {
			t.Errorf("expected parse error for invalid JSON, but got none")
		}
	}
	if count != 1 {
		t.Errorf("Expected 1 record, got %d", count)
	}
}

func TestReader_ValidFile(t *testing.T) {
	inputFile := `{"event_id":"1","text":"hello there"}
  {"event_id":"2","text":"is this ok?","validators":["toxic-words"]}`

	reader := NewReader(strings.NewReader(inputFile), newTestLogger())

	var records []InputRecord
	for record := range reader.ReadAll(context.Background()) {
		if record.Error != nil {
			t.Errorf("Error reading the validation request record. Got: %s", record.Error)
		}
		records = append(records, record)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 validation requests. Got: %d", len(records))
	}
	if records[1].Request.Text != "is this ok?" {
		t.Errorf("Expected text 'is this ok?', got %q", records[1].Request.Text)
	}
	if len(records[1].Request.Validators) != 1 || records[1].Request.Validators[0] != "toxic-words" {
		t.Errorf("Expected validators [toxic-words], got %v", records[1].Request.Validators)
	}
}

func TestReader_EmptyTextIsValid(t *testing.T) {
	reader := NewReader(strings.NewReader(`{"event_id":"1","text":""}`), newTestLogger())

	count := 0
	for record := range reader.ReadAll(context.Background()) {
		count++
		if record.Error != nil {
			t.Errorf("Expected empty text to be accepted, got %v", record.Error)
		}
	}
	if count != 1 {
		t.Errorf("Expected 1 record, got %d", count)
	}
}

func TestReader_ContextCancellation(t *testing.T) {
	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, `{"event_id":"1","text":"hello"}`)
	}
	file := strings.NewReader(strings.Join(lines, "\n"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := NewReader(file, newTestLogger())

	ch := reader.ReadAll(ctx)
	count := 0
	for range ch {
		count++
		if count == 5 {
			cancel()
			break
		}
	}

	if count >= 100 {
		t.Errorf("expected early cancellation, but read all records")
	}
}

func TestReader_LineNumbers(t *testing.T) {
	inputFile := `{"event_id":"1","text":"one"}

{"invalid json}
{"event_id":"2","text":"two"}`

	reader := NewReader(strings.NewReader(inputFile), newTestLogger())

	records := []InputRecord{}
	for record := range reader.ReadAll(context.Background()) {
		records = append(records, record)
	}

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0].LineNumber != 1 {
		t.Errorf("first record should be line 1, got %d", records[0].LineNumber)
	}
	if records[1].LineNumber != 3 || records[1].Error == nil {
		t.Errorf("error record should be line 3, got %d (err %v)", records[1].LineNumber, records[1].Error)
	}
	if records[2].LineNumber != 4 {
		t.Errorf("third record should be line 4, got %d", records[2].LineNumber)
	}
}
