package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Gunvolt24/voltcart/internal/auth"
	cachemem "github.com/Gunvolt24/voltcart/internal/cache/memory"
	"github.com/Gunvolt24/voltcart/internal/cartsync"
	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/mirror"
	"github.com/Gunvolt24/voltcart/internal/ports"
	"github.com/Gunvolt24/voltcart/internal/repo/sqlite"
	"github.com/Gunvolt24/voltcart/internal/transport/httpclient"
	"github.com/Gunvolt24/voltcart/internal/transport/inproc"
	"github.com/Gunvolt24/voltcart/internal/usecase"
	"github.com/Gunvolt24/voltcart/pkg/logger"
	"github.com/Gunvolt24/voltcart/pkg/validate"
)

const (
	defaultLocalUser = "local-user"
	// локальная база не покидает машину: подпись нужна только для общего пути через TokenVerifier
	localSecret = "voltcart-local"
	localIssuer = "voltcart-local"

	localCacheSize = 64
)

// statusUpdater — смена статуса заказа (админ). Есть и у HTTP-клиента, и у локального бэкенда.
type statusUpdater interface {
	UpdateStatus(ctx context.Context, credential, orderID string, status domain.OrderStatus) (*domain.Order, error)
}

// env — собранные зависимости одной команды.
type env struct {
	session *cartsync.Session
	admin   statusUpdater
	token   string
	log     ports.Logger
	store   *sqlite.Store
}

func (e *env) Close() error {
	if e == nil {
		return nil
	}
	return e.store.Close()
}

// openEnv — сессия корзины поверх выбранного бэкенда. Зеркало корзины
// всегда живёт в локальной базе.
func openEnv(ctx context.Context, opts *RootOptions, stderr io.Writer) (*env, error) {
	log := logger.NewNop()
	if opts.Verbose {
		l, _, err := logger.NewZapLogger(false)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		log = l
	}

	store, err := sqlite.Open(ctx, opts.DBPath)
	if err != nil {
		return nil, err
	}
	e := &env{log: log, store: store}

	var backend ports.CartBackend
	if opts.Local {
		local, token, err := localBackend(store, opts.User, log)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		backend, e.admin, e.token = local, local, token
	} else {
		client := httpclient.New(opts.BaseURL, httpclient.WithTimeout(opts.Timeout))
		backend, e.admin, e.token = client, client, opts.Token
	}

	navigate := func(path string) {
		fmt.Fprintf(stderr, "authentication required (%s): issue a token with `cartctl token` and pass --token\n", path)
	}
	creds := ports.CredentialFunc(func() string { return e.token })
	e.session = cartsync.NewSession(backend, mirror.New(store.Collection(sqlite.CollectionLocal), log), creds, navigate, log)
	return e, nil
}

// localBackend — сервисы корзины и заказов над той же sqlite-базой; локальный
// пользователь — администратор своей базы.
func localBackend(store *sqlite.Store, user string, log ports.Logger) (*inproc.Backend, string, error) {
	if user == "" {
		return nil, "", errors.New("local mode requires --local-user")
	}
	tokens, err := auth.NewTokens(localSecret, localIssuer, 0)
	if err != nil {
		return nil, "", err
	}
	token, err := tokens.Issue(domain.Identity{UserID: user, Admin: true})
	if err != nil {
		return nil, "", err
	}

	checkout := validate.NewCheckoutValidator()
	carts := usecase.NewCartService(sqlite.NewCartRepository(store), checkout, log)
	orders := usecase.NewOrderService(sqlite.NewOrderRepository(store),
		cachemem.NewOrderCache(localCacheSize, 0), log, checkout)
	return inproc.New(carts, orders, tokens), token, nil
}

// withEnv — открыть окружение, выполнить fn и закрыть базу.
func withEnv(ctx context.Context, opts *RootOptions, stderr io.Writer, fn func(e *env) error) (err error) {
	e, err := openEnv(ctx, opts, stderr)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := e.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()
	return fn(e)
}
