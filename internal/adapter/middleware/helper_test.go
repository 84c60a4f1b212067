package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"
	"time"
)

func Test_bodyHash(t *testing.T) {
	data := []byte("hello world")
	sum := sha256.Sum256(data)
	if got, want := bodyHash(data), hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("bodyHash mismatch: got %s want %s", got, want)
	}
}

func Test_buildKey(t *testing.T) {
	actor := strings.Repeat("b", 32)
	reqID := strings.Repeat("a", 32)
	k := buildKey("POST", "/loans/:loan_id/underwrite", actor, reqID)
	if !strings.HasPrefix(k, "idemp:backed:post:/loans/:loan_id/underwrite:") {
		t.Fatalf("buildKey prefix mismatch: %q", k)
	}
	if !strings.Contains(k, ":"+actor+":") || !strings.HasSuffix(k, reqID) {
		t.Fatalf("buildKey missing actor/request segments: %q", k)
	}
}

func Test_validReqID(t *testing.T) {
	valid := []string{
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88", // UUID v4
		strings.Repeat("a", 32),                // 32-hex
	}
	for _, s := range valid {
		if !validReqID(s) {
			t.Fatalf("validReqID should accept %q", s)
		}
	}
	invalid := []string{
		"",
		strings.Repeat("A", 32), // uppercase
		strings.Repeat("a", 31),
		strings.Repeat("z", 32),
		"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88", // bad UUID version
	}
	for _, s := range invalid {
		if validReqID(s) {
			t.Fatalf("validReqID should reject %q", s)
		}
	}
}

func Test_parseAxRequestAt(t *testing.T) {
	sec := time.Now().UTC().Unix()
	ts, err := parseAxRequestAt(strconv.FormatInt(sec, 10))
	if err != nil || !ts.Equal(time.Unix(sec, 0).UTC()) {
		t.Fatalf("epoch seconds: ts=%v err=%v", ts, err)
	}

	ms := time.Now().UTC().UnixMilli()
	ts, err = parseAxRequestAt(strconv.FormatInt(ms, 10))
	if err != nil || !ts.Equal(time.UnixMilli(ms).UTC()) {
		t.Fatalf("epoch millis: ts=%v err=%v", ts, err)
	}

	ts, err = parseAxRequestAt("2026-08-31T10:00:00+07:00")
	if err != nil || !ts.Equal(time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339 with tz: ts=%v err=%v", ts, err)
	}

	for _, raw := range []string{"", "not-a-time", "2026-08-31T10:00:00", "1736123456abc"} {
		if _, err := parseAxRequestAt(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func Test_RedisHelpers(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	ctx := context.Background()

	key := buildKey("POST", "/loans", strings.Repeat("b", 32), strings.Repeat("a", 32))
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash([]byte(`{"a":1}`)),
		RequestID:   strings.Repeat("a", 32),
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   nowUTC(),
	}

	ok, err := provisionalSet(ctx, rdb, key, entry)
	if err != nil || !ok {
		t.Fatalf("provisionalSet 1: ok=%v err=%v", ok, err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > provisionalLockTTL {
		t.Fatalf("provisional TTL not set: %v", ttl)
	}
	// Second SetNX loses the race.
	if ok, err = provisionalSet(ctx, rdb, key, entry); err != nil || ok {
		t.Fatalf("provisionalSet 2: ok=%v err=%v", ok, err)
	}

	got, err := loadEntry(ctx, rdb, key)
	if err != nil {
		t.Fatalf("loadEntry: %v", err)
	}
	if !got.InProgress || got.BodySHA256 != entry.BodySHA256 {
		t.Fatalf("loaded entry mismatch: %+v", got)
	}

	final := entry
	final.InProgress = false
	final.Code = 200
	final.Body = []byte(`{"ok":true}`)
	if err := saveFinal(ctx, rdb, key, final, 5*time.Second); err != nil {
		t.Fatalf("saveFinal: %v", err)
	}
	got, err = loadEntry(ctx, rdb, key)
	if err != nil || got.InProgress || got.Code != 200 {
		t.Fatalf("final entry mismatch: %+v err=%v", got, err)
	}
}
