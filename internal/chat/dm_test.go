package chat

import "testing"

func TestDMChannelIDCommutative(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want string
	}{
		{name: "already ordered", a: "alice", b: "bob", want: "dm_alice_bob"},
		{name: "reversed", a: "bob", b: "alice", want: "dm_alice_bob"},
		{name: "self dm", a: "alice", b: "alice", want: "dm_alice_alice"},
		{name: "uuid-ish ids", a: "f0e1", b: "0abc", want: "dm_0abc_f0e1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DMChannelID(tc.a, tc.b); got != tc.want {
				t.Fatalf("DMChannelID(%q, %q) = %q, want %q", tc.a, tc.b, got, tc.want)
			}
			if DMChannelID(tc.a, tc.b) != DMChannelID(tc.b, tc.a) {
				t.Fatalf("DMChannelID not commutative for %q, %q", tc.a, tc.b)
			}
		})
	}
}

func TestDMParticipants(t *testing.T) {
	a, b, ok := DMParticipants(DMChannelID("u2", "u1"))
	if !ok || a != "u1" || b != "u2" {
		t.Fatalf("DMParticipants = %q, %q, %v; want u1, u2, true", a, b, ok)
	}

	for _, bad := range []string{"general", "dm_", "dm_only", "dm_trailing_"} {
		if _, _, ok := DMParticipants(bad); ok {
			t.Fatalf("DMParticipants(%q) ok = true, want false", bad)
		}
	}
}

func TestIsDMMember(t *testing.T) {
	id := DMChannelID("u1", "u2")

	if !IsDMMember(id, "u1") || !IsDMMember(id, "u2") {
		t.Fatal("participants not recognized as members")
	}
	if IsDMMember(id, "u3") {
		t.Fatal("non-participant recognized as member")
	}
	if IsDMMember("general", "u1") {
		t.Fatal("named channel treated as DM")
	}
}
