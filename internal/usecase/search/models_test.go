package search

import (
	"errors"
	"testing"
)

func TestNewJoin(t *testing.T) {
	post := Model{Name: "Post", Index: "posts", Connection: "es", Searchable: true}
	user := Model{Name: "User", Index: "users", Connection: "es", Searchable: true}

	tests := []struct {
		name    string
		models  []Model
		wantErr error
	}{
		{"valid", []Model{post, user}, nil},
		{"empty", nil, ErrEmptyJoin},
		{"not searchable", []Model{post, {Name: "Draft", Index: "drafts", Connection: "es"}}, ErrModelNotSearchable},
		{"shared index", []Model{post, {Name: "Article", Index: "posts", Connection: "es", Searchable: true}}, ErrAmbiguousIndex},
		{"other connection", []Model{post, {Name: "Log", Index: "logs", Connection: "os", Searchable: true}}, ErrIncompatibleConnection},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			j, err := NewJoin(tc.models...)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := j.Indices(); len(got) != 2 || got[0] != "posts" || got[1] != "users" {
				t.Errorf("indices = %v", got)
			}
			if len(j.Models()) != 2 {
				t.Errorf("models = %v", j.Models())
			}
		})
	}
}

func TestJoin_ModelFor(t *testing.T) {
	j, err := NewJoin(Model{Name: "Post", Index: "posts", Searchable: true})
	if err != nil {
		t.Fatalf("NewJoin: %v", err)
	}

	m, err := j.ModelFor("posts")
	if err != nil || m.Name != "Post" {
		t.Errorf("ModelFor(posts) = %+v, %v", m, err)
	}
	if _, err := j.ModelFor("users"); !errors.Is(err, ErrModelNotJoined) {
		t.Errorf("expected ErrModelNotJoined, got %v", err)
	}
}
