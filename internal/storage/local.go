package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LinkPath — маршрут, по которому сервер отдаёт объекты локального хранилища по подписанной ссылке.
const LinkPath = "/api/storage/"

const linkAudience = "storage"

var ErrInvalidLink = errors.New("invalid or expired link")

// LocalStore хранит объекты в каталоге на диске. Подписанные ссылки — JWT с audience "storage"
// и subject = ref, проверяются самим сервером (VerifyLink).
type LocalStore struct {
	root    string
	baseURL string
	secret  []byte
	now     func() time.Time
}

var _ BlobStore = (*LocalStore)(nil)

func NewLocalStore(root, baseURL, secret string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		now:     time.Now,
	}, nil
}

func (s *LocalStore) resolve(ref string) (string, string, error) {
	k, err := cleanKey(ref)
	if err != nil {
		return "", "", err
	}
	p, err := resolveWithinRoot(s.root, k)
	if err != nil {
		return "", "", err
	}
	return k, p, nil
}

func (s *LocalStore) Upload(ctx context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	k, p, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", ErrObjectExists
		}
		return "", fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return "", fmt.Errorf("close object: %w", err)
	}
	return k, nil
}

func (s *LocalStore) SignedURL(_ context.Context, ref string, ttl time.Duration) (string, error) {
	k, err := cleanKey(ref)
	if err != nil {
		return "", err
	}
	now := s.now()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   k,
		Audience:  jwt.ClaimStrings{linkAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign link: %w", err)
	}

	segs := strings.Split(k, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return s.baseURL + LinkPath + strings.Join(segs, "/") + "?token=" + url.QueryEscape(tok), nil
}

// VerifyLink проверяет, что token подписан этим хранилищем, не истёк и выдан именно на ref.
func (s *LocalStore) VerifyLink(ref, token string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(linkAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	if claims.Subject == "" || claims.Subject != ref {
		return ErrInvalidLink
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	_, p, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Remove(_ context.Context, refs ...string) error {
	var errs []error
	for _, ref := range refs {
		_, p, err := s.resolve(ref)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ref, err))
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", ref, err))
			continue
		}
		s.pruneEmptyDirs(filepath.Dir(p))
	}
	return errors.Join(errs...)
}

// pruneEmptyDirs убирает опустевшие каталоги ключа, не поднимаясь выше root.
func (s *LocalStore) pruneEmptyDirs(dir string) {
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return
	}
	for dir != rootAbs && isWithin(rootAbs, dir) {
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
