// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
	"golang.org/x/crypto/ssh"

	"github.com/staranto/novactl/internal/fault"
)

// Names of the members of a credentials archive.
const (
	RCFile         = "novarc"
	PrivateKeyFile = "pk.pem"
	PublicKeyFile  = "id_ed25519.pub"
)

// member checks user belongs to project and returns both records' keys.
func (m *Manager) member(ctx context.Context, user, project string) (access, secret string, err error) {
	u, err := m.GetUser(ctx, user)
	if err != nil {
		return "", "", err
	}
	p, err := m.GetProject(ctx, project)
	if err != nil {
		return "", "", err
	}
	if !p.HasMember(user) {
		return "", "", fault.Preconditionf("user %s is not a member of %s", user, project)
	}
	return u.AccessKey, u.SecretKey, nil
}

// GetEnvironmentRC renders the shell exports for user acting in project.
func (m *Manager) GetEnvironmentRC(ctx context.Context, user, project string) (string, error) {
	access, secret, err := m.member(ctx, user, project)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "export EC2_ACCESS_KEY=%q\n", access+":"+project)
	fmt.Fprintf(&b, "export EC2_SECRET_KEY=%q\n", secret)
	if m.EC2URL != "" {
		fmt.Fprintf(&b, "export EC2_URL=%q\n", m.EC2URL)
	}
	if m.S3URL != "" {
		fmt.Fprintf(&b, "export S3_URL=%q\n", m.S3URL)
	}
	fmt.Fprintf(&b, "export EC2_USER_ID=%q\n", user)
	fmt.Fprintf(&b, "export EC2_PRIVATE_KEY=${NOVA_KEY_DIR}/%s\n", PrivateKeyFile)
	fmt.Fprintf(&b, "alias ec2-bundle-image=\"ec2-bundle-image --user %s\"\n", user)
	return b.String(), nil
}

// GetCredentialsArchive zips the environment file with a fresh keypair.
// The private key is only ever handed out inside the archive.
func (m *Manager) GetCredentialsArchive(ctx context.Context, user, project string) ([]byte, error) {
	rc, err := m.GetEnvironmentRC(ctx, user, project)
	if err != nil {
		return nil, err
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, user+"@"+project)
	if err != nil {
		return nil, fmt.Errorf("failed to encode private key: %w", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to encode public key: %w", err)
	}

	members := []struct {
		name string
		mode os.FileMode
		data []byte
	}{
		{RCFile, 0o644, []byte(rc)},
		{PrivateKeyFile, 0o600, pem.EncodeToMemory(block)},
		{PublicKeyFile, 0o644, ssh.MarshalAuthorizedKey(sshPub)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	now := m.Clock.Now()
	for _, mem := range members {
		hdr := &zip.FileHeader{Name: mem.name, Method: zip.Deflate, Modified: now}
		hdr.SetMode(mem.mode)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", mem.name, err)
		}
		if _, err := w.Write(mem.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", mem.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), nil
}
