package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindjournal/internal/models"
	"mindjournal/internal/store"
)

const (
	voucherAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	voucherSuffixLen   = 8
	maxVoucherAttempts = 5
)

// VoucherCode builds "{REWARD_ID}-{8 random uppercase alphanumerics}".
func VoucherCode(rewardID string) (string, error) {
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(rewardID))
	sb.WriteByte('-')
	base := big.NewInt(int64(len(voucherAlphabet)))
	for i := 0; i < voucherSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		sb.WriteByte(voucherAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

type RewardsService struct {
	store   *store.Store
	now     Clock
	log     *zap.Logger
	newCode func(rewardID string) (string, error)

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewRewardsService(st *store.Store, now Clock, log *zap.Logger) *RewardsService {
	return &RewardsService{
		store:    st,
		now:      now,
		log:      log,
		newCode:  VoucherCode,
		inFlight: map[string]struct{}{},
	}
}

type CatalogItem struct {
	models.Reward
	Redeemed   int
	Affordable bool
}

// Catalog lists every reward annotated with the session user's redemption
// count and whether their balance covers it.
func (r *RewardsService) Catalog(sess Session) ([]CatalogItem, error) {
	if err := sess.requireUser(); err != nil {
		return nil, err
	}
	u, ok := r.store.User(sess.UserID)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	counts := map[string]int{}
	for _, red := range r.store.RedemptionsByUser(u.ID) {
		counts[red.RewardID]++
	}
	var out []CatalogItem
	for _, rw := range r.store.Rewards() {
		out = append(out, CatalogItem{Reward: rw, Redeemed: counts[rw.ID], Affordable: u.Points >= rw.PointsCost})
	}
	return out, nil
}

func (r *RewardsService) Reward(id string) (models.Reward, bool) {
	return r.store.Reward(id)
}

func (r *RewardsService) begin(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inFlight[userID]; busy {
		return false
	}
	r.inFlight[userID] = struct{}{}
	return true
}

func (r *RewardsService) end(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, userID)
}

// Redeem exchanges the reward's cost for a voucher. The debit and the
// redemption record are persisted together; on any failure neither happens.
// Only one redemption per user runs at a time.
func (r *RewardsService) Redeem(ctx context.Context, sess Session, rewardID string) (models.RedeemedReward, models.User, error) {
	if err := sess.requireUser(); err != nil {
		return models.RedeemedReward{}, models.User{}, err
	}
	reward, ok := r.store.Reward(rewardID)
	if !ok {
		return models.RedeemedReward{}, models.User{}, ErrRewardNotFound
	}
	if !r.begin(sess.UserID) {
		return models.RedeemedReward{}, models.User{}, ErrRedemptionInFlight
	}
	defer r.end(sess.UserID)

	u, ok := r.store.User(sess.UserID)
	if !ok {
		return models.RedeemedReward{}, models.User{}, ErrNotAuthenticated
	}
	if u.Points < reward.PointsCost {
		return models.RedeemedReward{}, u, ErrInsufficientPoints
	}

	for attempt := 0; attempt < maxVoucherAttempts; attempt++ {
		code, err := r.newCode(reward.ID)
		if err != nil {
			return models.RedeemedReward{}, u, err
		}
		if r.store.CodeExists(code) {
			continue
		}
		rec := models.RedeemedReward{
			ID:         uuid.New().String(),
			RewardID:   reward.ID,
			UserID:     u.ID,
			Code:       code,
			RedeemedAt: r.now().UTC(),
		}
		updated, err := r.store.Redeem(ctx, rec, reward.PointsCost)
		switch {
		case errors.Is(err, store.ErrDuplicateCode):
			continue
		case errors.Is(err, store.ErrUserNotFound):
			return models.RedeemedReward{}, models.User{}, ErrNotAuthenticated
		case err != nil:
			return models.RedeemedReward{}, updated, err
		}
		r.log.Info("reward redeemed",
			zap.String("user_id", u.ID),
			zap.String("reward_id", reward.ID),
			zap.Int("points_after", updated.Points),
		)
		return rec, updated, nil
	}
	return models.RedeemedReward{}, u, ErrVoucherExhausted
}

func (r *RewardsService) ListMine(sess Session) ([]models.RedeemedReward, error) {
	if err := sess.requireUser(); err != nil {
		return nil, err
	}
	return r.store.RedemptionsByUser(sess.UserID), nil
}

// ListForUser returns any user's redemptions; admin only.
func (r *RewardsService) ListForUser(sess Session, userID string) ([]models.RedeemedReward, error) {
	if err := sess.requireAdmin(); err != nil {
		return nil, err
	}
	return r.store.RedemptionsByUser(userID), nil
}
