package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/api"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
)

// CashService is a private notebook of money owed outside any group.
type CashService struct {
	store storage.CashStore
}

var _ api.CashServiceHandler = (*CashService)(nil)

func NewCashService(store storage.CashStore) *CashService {
	return &CashService{store: store}
}

func (s *CashService) ListCash(ctx context.Context, req *connect.Request[api.ListCashRequest]) (*connect.Response[api.ListCashResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.ListCash(ctx, userID)
	if err != nil {
		return nil, storeError("list cash", err)
	}

	out := make([]api.CashEntry, len(entries))
	for i, e := range entries {
		out[i] = toAPICash(e)
	}
	return connect.NewResponse(&api.ListCashResponse{Entries: out}), nil
}

func (s *CashService) AddCash(ctx context.Context, req *connect.Request[api.AddCashRequest]) (*connect.Response[api.AddCashResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalid("name required")
	}
	if err := requireNonNegative("owed_to_me", req.Msg.OwedToMe); err != nil {
		return nil, err
	}
	if err := requireNonNegative("owed_to_them", req.Msg.OwedToThem); err != nil {
		return nil, err
	}

	entry := &models.CashEntry{UserID: userID, Name: name, OwedToMe: req.Msg.OwedToMe, OwedToThem: req.Msg.OwedToThem}
	if err := s.store.CreateCash(ctx, entry); err != nil {
		return nil, storeError("add cash", err)
	}

	return connect.NewResponse(&api.AddCashResponse{Entry: toAPICash(entry)}), nil
}

// UpdateCash changes only the fields present in the request.
func (s *CashService) UpdateCash(ctx context.Context, req *connect.Request[api.UpdateCashRequest]) (*connect.Response[api.UpdateCashResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	patch := models.CashPatch{Name: req.Msg.Name, OwedToMe: req.Msg.OwedToMe, OwedToThem: req.Msg.OwedToThem}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, invalid("name must not be empty")
		}
		patch.Name = &name
	}
	if patch.OwedToMe != nil {
		if err := requireNonNegative("owed_to_me", *patch.OwedToMe); err != nil {
			return nil, err
		}
	}
	if patch.OwedToThem != nil {
		if err := requireNonNegative("owed_to_them", *patch.OwedToThem); err != nil {
			return nil, err
		}
	}

	entry, err := s.store.UpdateCash(ctx, userID, req.Msg.EntryID, patch)
	if err != nil {
		return nil, storeError("update cash", err)
	}

	return connect.NewResponse(&api.UpdateCashResponse{Entry: toAPICash(entry)}), nil
}
