package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/reseller-hub/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// AccountState 账号鉴权快照，JWT 中间件据此校验角色与状态，避免每次请求查库
type AccountState struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	UpdatedAt int64  `json:"updated_at"`
}

func accountStateKey(userID uint) string {
	return fmt.Sprintf("auth:account:%d", userID)
}

// BuildAccountState 从账号模型构建鉴权快照
func BuildAccountState(user *models.User) *AccountState {
	if user == nil {
		return nil
	}
	return &AccountState{
		UserID:    user.ID,
		Role:      user.Role,
		Status:    user.Status,
		UpdatedAt: time.Now().Unix(),
	}
}

// GetAccountState 获取鉴权快照
func (s *Store) GetAccountState(ctx context.Context, userID uint) (*AccountState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var state AccountState
	hit, err := s.GetJSON(ctx, accountStateKey(userID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAccountState 写入鉴权快照
func (s *Store) SetAccountState(ctx context.Context, state *AccountState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return s.SetJSON(ctx, accountStateKey(state.UserID), state, authStateCacheTTL)
}

// DelAccountState 删除鉴权快照
func (s *Store) DelAccountState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return s.Del(ctx, accountStateKey(userID))
}
