package db

import (
	"slices"
	"testing"

	"github.com/jinbekim/quizquiz/models"
)

func TestLockOrder(t *testing.T) {
	tests := []struct {
		name      string
		in        []models.Participation
		wantUsers []string
		wantIDs   []string
	}{
		{name: "empty"},
		{
			name:      "sorted by user id",
			in:        []models.Participation{{UserID: "carol"}, {UserID: "alice", Correct: true}, {UserID: "bob"}},
			wantUsers: []string{"alice", "bob", "carol"},
			wantIDs:   []string{"alice", "bob", "carol"},
		},
		{
			name:      "ids are distinct",
			in:        []models.Participation{{UserID: "u2"}, {UserID: "u1"}, {UserID: "u2"}},
			wantUsers: []string{"u1", "u2", "u2"},
			wantIDs:   []string{"u1", "u2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := slices.Clone(tt.in)
			sorted, ids := lockOrder(tt.in)

			var users []string
			for _, p := range sorted {
				users = append(users, p.UserID)
			}
			if !slices.Equal(users, tt.wantUsers) {
				t.Errorf("participations = %v, want %v", users, tt.wantUsers)
			}
			if !slices.Equal(ids, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
			if !slices.Equal(tt.in, original) {
				t.Errorf("input reordered: %v", tt.in)
			}
		})
	}
}
