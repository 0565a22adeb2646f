package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"staybook/internal/domain"
	"staybook/internal/repository"
	"staybook/internal/session"
	"staybook/internal/validation"
	"staybook/pkg/logger"
)

func newService(t *testing.T) (*Service, domain.Storage) {
	t.Helper()
	sessions := session.NewMemoryStore(0)
	t.Cleanup(sessions.Close)

	store := repository.NewMemoryStorage(sessions, logger.Nop())
	svc := NewService(store, validation.New(), logger.Nop())
	svc.cost = bcrypt.MinCost
	return svc, store
}

func TestRegister_HashesPassword(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	user, err := svc.Register(ctx, domain.NewUser{Username: "amara", Password: "secret", Name: "Amara", IsHotelOwner: true})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if !user.IsHotelOwner {
		t.Error("isHotelOwner lost")
	}

	stored, _ := store.GetUserByUsername(ctx, "amara")
	if stored.Password == "secret" {
		t.Fatal("password stored in plain text")
	}
	if !CheckPassword(stored.Password, "secret") {
		t.Error("stored hash does not verify")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	svc.Register(ctx, domain.NewUser{Username: "dup", Password: "x", Name: "A"})
	_, err := svc.Register(ctx, domain.NewUser{Username: "dup", Password: "y", Name: "B"})
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Errorf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	const n = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Register(ctx, domain.NewUser{Username: "race", Password: "x", Name: "R"}); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("%d registrations succeeded, want 1", created)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Register(context.Background(), domain.NewUser{Username: "x"})

	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	registered, _ := svc.Register(ctx, domain.NewUser{Username: "kofi", Password: "pw", Name: "Kofi"})

	user, err := svc.Login(ctx, domain.LoginRequest{Username: "kofi", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Login() id = %d, want %d", user.ID, registered.ID)
	}

	for _, req := range []domain.LoginRequest{
		{Username: "kofi", Password: "wrong"},
		{Username: "nobody", Password: "pw"},
	} {
		if _, err := svc.Login(ctx, req); !errors.Is(err, domain.ErrInvalidLogin) {
			t.Errorf("Login(%+v) err = %v, want ErrInvalidLogin", req, err)
		}
	}
}

func TestUserForSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	u, _ := svc.Register(ctx, domain.NewUser{Username: "s", Password: "pw", Name: "S"})

	got, err := svc.UserForSession(ctx, &domain.Session{UserID: u.ID})
	if err != nil || got == nil || got.ID != u.ID {
		t.Errorf("UserForSession() = %+v, %v", got, err)
	}

	if got, _ := svc.UserForSession(ctx, &domain.Session{UserID: 999}); got != nil {
		t.Errorf("unknown user resolved: %+v", got)
	}
	if got, _ := svc.UserForSession(ctx, nil); got != nil {
		t.Error("nil session resolved")
	}
}
