package srtp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeExporter struct {
	profile Profile
	label   string
	length  int
}

func (f *fakeExporter) Profile() (Profile, error) { return f.profile, nil }

func (f *fakeExporter) ExportKeyingMaterial(label string, length int) ([]byte, error) {
	f.label, f.length = label, length
	out := make([]byte, length)
	for i := range out {
		out[i] = byte(i)
	}
	return out, nil
}

func TestExtractKeyMaterial(t *testing.T) {
	e := &fakeExporter{profile: ProfileAES128CMHMACSHA1_80}
	km, err := ExtractKeyMaterial(e)
	if err != nil {
		t.Fatalf("ExtractKeyMaterial: %v", err)
	}
	if e.label != ExporterLabel || e.length != 60 {
		t.Fatalf("exporter called with %q/%d", e.label, e.length)
	}

	seq := func(from, n int) []byte {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte(from + i)
		}
		return b
	}
	want := KeyMaterial{
		Profile: ProfileAES128CMHMACSHA1_80,
		Label:   ExporterLabel,
		Client:  SessionKeys{Key: seq(0, 16), Salt: seq(32, 14)},
		Server:  SessionKeys{Key: seq(16, 16), Salt: seq(46, 14)},
	}
	if diff := cmp.Diff(want, km); diff != "" {
		t.Fatalf("key material mismatch (-want +got):\n%s", diff)
	}

	if !bytes.Equal(km.Local(true).Key, km.Remote(false).Key) {
		t.Fatalf("client local keys must be the server's remote keys")
	}
	if !bytes.Equal(km.Local(false).Salt, km.Remote(true).Salt) {
		t.Fatalf("server local salt must be the client's remote salt")
	}
}

func TestSplitKeyMaterialLength(t *testing.T) {
	if _, err := SplitKeyMaterial(ProfileAES128CMHMACSHA1_32, make([]byte, 59)); !errors.Is(err, ErrKeyLength) {
		t.Fatalf("expected ErrKeyLength, got %v", err)
	}
	if _, err := SplitKeyMaterial(Profile(0), make([]byte, 60)); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestSplitKeyMaterialCopiesInput(t *testing.T) {
	raw := make([]byte, 60)
	km, err := SplitKeyMaterial(ProfileAES128CMHMACSHA1_80, raw)
	if err != nil {
		t.Fatalf("SplitKeyMaterial: %v", err)
	}
	raw[0] = 0xff
	if km.Client.Key[0] != 0 {
		t.Fatalf("key material aliases the exporter buffer")
	}
	// Appending to one key must not overwrite the next.
	_ = append(km.Client.Key, 0xee)
	if km.Server.Key[0] != 0 {
		t.Fatalf("client key capacity overlaps server key")
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name      string
		preferred []Profile
		offered   []Profile
		want      Profile
		ok        bool
	}{
		{"server preference wins", SupportedProfiles(), []Profile{ProfileAES128CMHMACSHA1_32, ProfileAES128CMHMACSHA1_80}, ProfileAES128CMHMACSHA1_80, true},
		{"single common", SupportedProfiles(), []Profile{0x0007, ProfileAES128CMHMACSHA1_32}, ProfileAES128CMHMACSHA1_32, true},
		{"disjoint", []Profile{ProfileAES128CMHMACSHA1_80}, []Profile{ProfileAES128CMHMACSHA1_32}, 0, false},
		{"unknown never selected", []Profile{0x0007}, []Profile{0x0007}, 0, false},
		{"empty offer", SupportedProfiles(), nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := Negotiate(tt.preferred, tt.offered)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("%s: Negotiate = %s/%v, want %s/%v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestOutcomeOf(t *testing.T) {
	tests := map[error]Outcome{
		nil:               OutcomeOK,
		ErrReplay:         OutcomeReplay,
		ErrAuthentication: OutcomeAuthFailure,
		ErrCrypto:         OutcomeMalformed,
		ErrUnknownStream:  OutcomeUnknownStream,
		ErrIndexExhausted: OutcomeError,
	}
	for err, want := range tests {
		if got := OutcomeOf(err); got != want {
			t.Fatalf("OutcomeOf(%v) = %s, want %s", err, got, want)
		}
	}
	if OutcomeOK.Dropped() || !OutcomeReplay.Dropped() {
		t.Fatalf("Dropped misreports")
	}
}
