package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/bkk/pkg/repo"
	"golang.org/x/crypto/ssh"
)

// Commit signatures are stored as "sshsig-v1:<format>:<pubkey>:<sig>",
// where pubkey and sig are base64 of the SSH wire encodings. The scheme
// label lets future formats coexist with already-written commits.
const sshSignatureScheme = "sshsig-v1"

// defaultKeyNames are tried under ~/.ssh when neither the --sign-key flag
// nor user.signing_key in .bkk/config.toml names a key.
var defaultKeyNames = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// newSSHCommitSigner loads an SSH private key and returns a CommitSigner
// over it, together with the key path that was picked.
func newSSHCommitSigner(cfg *repo.Config, flagPath string) (repo.CommitSigner, string, error) {
	keyPath, err := signingKeyPath(cfg, flagPath)
	if err != nil {
		return nil, "", err
	}

	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, "", fmt.Errorf("read signing key %q: %w", keyPath, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse signing key %q: %w", keyPath, err)
	}
	pubB64 := base64.StdEncoding.EncodeToString(signer.PublicKey().Marshal())

	sign := func(payload []byte) (string, error) {
		sig, err := signer.Sign(rand.Reader, payload)
		if err != nil {
			return "", fmt.Errorf("ssh sign: %w", err)
		}
		sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
		return fmt.Sprintf("%s:%s:%s:%s", sshSignatureScheme, sig.Format, pubB64, sigB64), nil
	}
	return sign, keyPath, nil
}

// signingKeyPath picks the private key file: the explicit flag wins, then
// user.signing_key from the repository config, then the first default key
// present under ~/.ssh.
func signingKeyPath(cfg *repo.Config, flagPath string) (string, error) {
	if p := strings.TrimSpace(flagPath); p != "" {
		return expandHomePath(p)
	}
	if cfg != nil {
		if p := strings.TrimSpace(cfg.User.SigningKey); p != "" {
			return expandHomePath(p)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	for _, name := range defaultKeyNames {
		p := filepath.Join(home, ".ssh", name)
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("no signing key: set user.signing_key in .bkk/config.toml, pass --sign-key, or provide one of ~/.ssh/{%s}", strings.Join(defaultKeyNames, ", "))
}

// expandHomePath expands a leading ~/ and absolutizes the result.
func expandHomePath(p string) (string, error) {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		p = filepath.Join(home, p[2:])
	}
	return filepath.Abs(p)
}
