// Package user registers platform accounts. Roles are fixed at
// registration; account status starts active.
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/audit"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/uow"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/user"
	"github.com/nancy-13-hue/p2p-lending-database/internal/observability"
	"github.com/nancy-13-hue/p2p-lending-database/internal/usecase/record"
	"github.com/nancy-13-hue/p2p-lending-database/pkg/id"
)

const opRegisterUser = "register_user"

type Usecase struct {
	uow     uow.UnitOfWork
	metrics *observability.Metrics
	log     zerolog.Logger
}

func NewUsecase(tx uow.UnitOfWork, m *observability.Metrics) *Usecase {
	return &Usecase{
		uow:     tx,
		metrics: m,
		log:     observability.NewLogger("user"),
	}
}

// Register creates the account and its UserRegistered audit row in one
// transaction. Registration is self-attributed: the new account is the
// acting user on its own audit row.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*UserDTO, error) {
	start := time.Now()
	if err := in.validate(); err != nil {
		u.metrics.Rejected(opRegisterUser, record.FailureReason(err))
		return nil, err
	}

	var dto *UserDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		dto = nil

		nu := &user.User{
			UserID:        id.NewID32(),
			Name:          strings.TrimSpace(in.Name),
			Email:         strings.ToLower(strings.TrimSpace(in.Email)),
			Role:          user.Role(in.Role),
			AccountStatus: user.AccountActive,
		}
		if err := r.Users.Create(ctx, nu); err != nil {
			return err
		}
		if err := record.Audit(ctx, r, audit.ActionUserRegistered, audit.EntityUser, nu.UserID, nu.ID, "role="+in.Role); err != nil {
			return err
		}

		dto = &UserDTO{
			UserID:        nu.UserID,
			Name:          nu.Name,
			Email:         nu.Email,
			Role:          string(nu.Role),
			AccountStatus: string(nu.AccountStatus),
			CreatedAt:     nu.CreatedAt,
		}
		return nil
	})
	if err != nil {
		u.metrics.Rejected(opRegisterUser, record.FailureReason(err))
		return nil, err
	}

	u.metrics.Applied(opRegisterUser)
	u.metrics.Observe(opRegisterUser, start)
	u.log.Info().
		Str("user_id", dto.UserID).
		Str("role", dto.Role).
		Msg("user registered")
	return dto, nil
}

func (in RegisterInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", loan.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("%w: email is required", loan.ErrInvalidInput)
	}
	if !user.ValidRole(user.Role(in.Role)) {
		return fmt.Errorf("%w: unknown role %q", loan.ErrInvalidInput, in.Role)
	}
	return nil
}
