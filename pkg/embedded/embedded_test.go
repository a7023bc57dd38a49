package embedded

import (
	"testing"
	"testing/fstest"
)

func TestNotInitialized(t *testing.T) {
	Init(nil)
	if IsInitialized() {
		t.Fatal("nil FS should leave package uninitialized")
	}
	if _, err := ReadFile("data/editor.yaml"); err == nil {
		t.Error("ReadFile should fail before Init")
	}
	if Exists("data/editor.yaml") {
		t.Error("Exists should be false before Init")
	}
}

func TestReadAndGlob(t *testing.T) {
	Init(fstest.MapFS{
		"data/editor.yaml":          {Data: []byte("fps: 60\n")},
		"data/skills/fireball.yaml": {Data: []byte("name: fireball\n")},
		"data/skills/slash.yaml":    {Data: []byte("name: slash\n")},
	})
	defer Init(nil)

	data, err := ReadFile("./data/editor.yaml")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "fps: 60\n" {
		t.Errorf("unexpected content %q", data)
	}

	if !Exists("data/skills/slash.yaml") {
		t.Error("slash.yaml should exist")
	}
	if Exists("assets/images/bg.png") {
		t.Error("paths outside data/ are rejected")
	}

	matches, err := Glob("data/skills/*.yaml")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 || matches[0] != "data/skills/fireball.yaml" {
		t.Errorf("unexpected matches %v", matches)
	}
}
