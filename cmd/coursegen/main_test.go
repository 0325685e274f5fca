package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunRequiresTitle(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-gateway-url", "http://gateway.invalid"}, &out)
	if err == nil || !strings.Contains(err.Error(), "-title") {
		t.Fatalf("expected title error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestObjectiveListSkipsBlank(t *testing.T) {
	var o objectiveList
	for _, v := range []string{"Read files", "  ", "Write loops"} {
		if err := o.Set(v); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	if len(o) != 2 || o.String() != "Read files; Write loops" {
		t.Fatalf("objectives=%v", []string(o))
	}
}

func TestRunOptionsNoThumbnails(t *testing.T) {
	if ro := runOptions(false); ro.Thumbnails != nil {
		t.Fatalf("expected config default, got %v", *ro.Thumbnails)
	}
	ro := runOptions(true)
	if ro.Thumbnails == nil || *ro.Thumbnails {
		t.Fatalf("expected thumbnails forced off, got %+v", ro)
	}
}
