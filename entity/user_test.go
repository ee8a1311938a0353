package entity

import "testing"

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		rec  UserRecord
		want string
	}{
		{
			name: "username wins",
			rec:  UserRecord{Username: OptionalString("alice"), FirstName: OptionalString("Alice")},
			want: "@alice",
		},
		{
			name: "full name with id",
			rec:  UserRecord{FirstName: OptionalString("Bob"), LastName: OptionalString("Smith")},
			want: "Bob Smith (42)",
		},
		{
			name: "first name only",
			rec:  UserRecord{FirstName: OptionalString("Bob")},
			want: "Bob (42)",
		},
		{
			name: "last name only",
			rec:  UserRecord{LastName: OptionalString("Smith")},
			want: "Smith (42)",
		},
		{
			name: "nothing",
			rec:  UserRecord{},
			want: "No name (42)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName("42", tt.rec); got != tt.want {
				t.Fatalf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptionalString(t *testing.T) {
	if OptionalString("") != nil {
		t.Fatal("empty value must box to nil")
	}
	if v := OptionalString("x"); v == nil || *v != "x" {
		t.Fatalf("expected pointer to x, got %v", v)
	}
}
