// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package policy

import (
	"bufio"
	"context"
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/agentedge/gateway/internal/gwtypes"
)

// HtpasswdStore holds parsed htpasswd credentials and reloads from disk.
// This gateway has no hot-reload, but Reload is exposed for callers that
// rebuild policy steps on SIGHUP.
type HtpasswdStore struct {
	path string

	mu      sync.RWMutex
	entries map[string]string // username -> encoded hash
}

// NewHtpasswdStore loads credentials from an .htpasswd file.
func NewHtpasswdStore(path string) (*HtpasswdStore, error) {
	s := &HtpasswdStore{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewHtpasswdStoreFromEntries builds a store directly from pre-parsed
// username -> encoded-hash pairs, without touching disk. Used by tests and
// by callers that source credentials from a secret store rather than a
// file.
func NewHtpasswdStoreFromEntries(entries map[string]string) *HtpasswdStore {
	return &HtpasswdStore{entries: entries}
}

// Reload re-reads the htpasswd file from disk.
func (s *HtpasswdStore) Reload() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("policy: loading htpasswd file: %w", err)
	}
	defer f.Close()

	entries := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		user, hash, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		entries[user] = hash
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("policy: parsing htpasswd file: %w", err)
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// Check reports whether username/password matches a stored credential.
// Supports bcrypt ($2y$/$2a$/$2b$), APR1 MD5 ($apr1$), and legacy
// SHA1-crypt ({SHA}) htpasswd hash formats.
func (s *HtpasswdStore) Check(username, password string) bool {
	s.mu.RLock()
	hash, ok := s.entries[username]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	switch {
	case strings.HasPrefix(hash, "$2y$"), strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	case strings.HasPrefix(hash, "$apr1$"):
		return apr1Crypt(password, hash) == hash
	case strings.HasPrefix(hash, "{SHA}"):
		sum := sha1.Sum([]byte(password))
		return "{SHA}"+base64.StdEncoding.EncodeToString(sum[:]) == hash
	default:
		return false
	}
}

// BasicAuthStep implements HTTP Basic authentication with a three-mode
// decision table:
//
//	Strict:     missing credentials -> reject; invalid -> reject.
//	Optional:   missing credentials -> allow through; invalid -> reject.
//	Permissive: missing or invalid credentials -> allow through.
type BasicAuthStep struct {
	realm string
	mode  gwtypes.AuthMode
	store *HtpasswdStore
}

func NewBasicAuthStep(p *gwtypes.BasicAuthPolicy, store *HtpasswdStore) *BasicAuthStep {
	return &BasicAuthStep{mode: p.Mode, store: store, realm: "Restricted"}
}

func (b *BasicAuthStep) Name() string { return "basic-auth" }

func (b *BasicAuthStep) Apply(_ context.Context, req *gwtypes.Request) (*Response, error) {
	username, password, ok := basicCredentials(req.Header)
	if !ok {
		if b.mode == gwtypes.AuthModeStrict {
			return b.unauthorized("no basic authentication credentials found"), nil
		}
		return nil, nil
	}

	if b.store.Check(username, password) {
		return nil, nil
	}

	if b.mode == gwtypes.AuthModePermissive {
		return nil, nil
	}
	return b.unauthorized("invalid credentials"), nil
}

// unauthorized builds the 401 short-circuit response, carrying the
// WWW-Authenticate challenge every Basic-auth rejection must include.
func (b *BasicAuthStep) unauthorized(message string) *Response {
	return &Response{
		DirectStatus: http.StatusUnauthorized,
		DirectBody:   message,
		ResponseHeaders: http.Header{
			"WWW-Authenticate": {fmt.Sprintf("Basic realm=%q", b.realm)},
		},
	}
}

func basicCredentials(h http.Header) (username, password string, ok bool) {
	auth := h.Get("Authorization")
	const prefix = "Basic "
	if !strings.HasPrefix(auth, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(decoded), ":")
	return username, password, ok
}

// apr1Crypt implements the Apache-specific MD5-crypt variant used by
// htpasswd -m, following the well-known public algorithm.
func apr1Crypt(password, hashed string) string {
	parts := strings.SplitN(hashed, "$", 4)
	if len(parts) != 4 {
		return ""
	}
	salt := parts[2]
	return apr1(password, salt)
}

func apr1(password, salt string) string {
	const magic = "$apr1$"
	ctx := md5.New()
	ctx.Write([]byte(password))
	ctx.Write([]byte(magic))
	ctx.Write([]byte(salt))

	ctx1 := md5.New()
	ctx1.Write([]byte(password))
	ctx1.Write([]byte(salt))
	ctx1.Write([]byte(password))
	final := ctx1.Sum(nil)

	for pl := len(password); pl > 0; pl -= 16 {
		n := 16
		if pl < 16 {
			n = pl
		}
		ctx.Write(final[:n])
	}

	for i := len(password); i != 0; i >>= 1 {
		if i&1 != 0 {
			ctx.Write([]byte{0})
		} else {
			ctx.Write([]byte(password[:1]))
		}
	}
	final = ctx.Sum(nil)

	for i := 0; i < 1000; i++ {
		c := md5.New()
		if i&1 != 0 {
			c.Write([]byte(password))
		} else {
			c.Write(final)
		}
		if i%3 != 0 {
			c.Write([]byte(salt))
		}
		if i%7 != 0 {
			c.Write([]byte(password))
		}
		if i&1 != 0 {
			c.Write(final)
		} else {
			c.Write([]byte(password))
		}
		final = c.Sum(nil)
	}

	const itoa64 = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	var out strings.Builder
	out.WriteString("$apr1$")
	out.WriteString(salt)
	out.WriteString("$")

	encodeGroup := func(a, b, c byte, n int) {
		v := uint32(a)<<16 | uint32(b)<<8 | uint32(c)
		for i := 0; i < n; i++ {
			out.WriteByte(itoa64[v&0x3f])
			v >>= 6
		}
	}
	encodeGroup(final[0], final[6], final[12], 4)
	encodeGroup(final[1], final[7], final[13], 4)
	encodeGroup(final[2], final[8], final[14], 4)
	encodeGroup(final[3], final[9], final[15], 4)
	encodeGroup(final[4], final[10], final[5], 4)
	encodeGroup(0, 0, final[11], 2)

	return out.String()
}
