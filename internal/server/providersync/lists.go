package providersync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/providers"
	"github.com/iudanet/tasksync/internal/server/storage"
)

// reconcileLists links every remote list to a local one.
//
// Lists always arrive complete, so a mapped list missing from the snapshot
// was deleted remotely and is deleted locally with its tasks. A mapped list
// whose local side is gone is deleted remotely. Unmapped lists on either
// side are created on the other one; on the first pass a local list with the
// same name is linked instead.
func (p *pass) reconcileLists(ctx context.Context, remote []providers.RemoteList) error {
	locals, err := p.store.ListLists(ctx, p.userID)
	if err != nil {
		return fmt.Errorf("failed to list local lists: %w", err)
	}
	localByID := make(map[int64]*models.List, len(locals))
	for _, l := range locals {
		localByID[l.ID.Remote] = l
	}
	remoteByID := make(map[string]*providers.RemoteList, len(remote))
	for i := range remote {
		remoteByID[remote[i].ExternalID] = &remote[i]
	}

	mappings, err := p.store.ListMappings(ctx, p.userID, p.provider, models.ExternalList)
	if err != nil {
		return fmt.Errorf("failed to list list mappings: %w", err)
	}

	handled := make(map[string]bool, len(remote))
	linked := make(map[int64]bool, len(locals))
	for _, m := range mappings {
		handled[m.ExternalID] = true
		local, haveLocal := localByID[m.LocalID]
		rl, haveRemote := remoteByID[m.ExternalID]

		switch {
		case !haveLocal:
			if haveRemote {
				if err := p.adapter.DeleteList(ctx, m.ExternalID); err != nil && !errors.Is(err, providers.ErrNotFound) {
					return fmt.Errorf("failed to delete remote list %s: %w", m.ExternalID, err)
				}
				p.out.Deleted++
			}
			if err := p.dropListMapping(ctx, m); err != nil {
				return err
			}
		case !haveRemote:
			p.log.Info("Remote list deleted, removing local list", "list_id", m.LocalID, "external_id", m.ExternalID)
			if err := p.store.DeleteList(ctx, m.LocalID); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("failed to delete list %d: %w", m.LocalID, err)
			}
			p.out.Deleted++
			if err := p.dropListMapping(ctx, m); err != nil {
				return err
			}
		default:
			linked[m.LocalID] = true
			if err := p.syncListName(ctx, m, local, rl); err != nil {
				return err
			}
		}
	}

	for i := range remote {
		rl := &remote[i]
		if handled[rl.ExternalID] {
			continue
		}
		var local *models.List
		if p.lastSync == nil {
			local = matchByName(locals, linked, rl.Name, func(l *models.List) (int64, string) {
				return l.ID.Remote, l.Name
			})
		}
		if local == nil {
			local = &models.List{
				UserID:    p.userID,
				Name:      rl.Name,
				CreatedAt: p.start,
				UpdatedAt: p.start,
			}
			if err := p.store.InsertList(ctx, local); err != nil {
				return fmt.Errorf("failed to import list %s: %w", rl.ExternalID, err)
			}
			p.out.Pulled++
		} else if local.Name != rl.Name {
			local.Name = rl.Name
			local.UpdatedAt = p.start
			if err := p.store.UpdateList(ctx, local); err != nil {
				return fmt.Errorf("failed to update list %d: %w", local.ID.Remote, err)
			}
		}
		linked[local.ID.Remote] = true
		if err := p.saveListMapping(ctx, nil, local.ID.Remote, rl); err != nil {
			return err
		}
	}

	for _, l := range locals {
		if linked[l.ID.Remote] {
			continue
		}
		rl, err := p.adapter.CreateList(ctx, l)
		if err != nil {
			return fmt.Errorf("failed to create remote list for %d: %w", l.ID.Remote, err)
		}
		p.out.Pushed++
		if err := p.saveListMapping(ctx, nil, l.ID.Remote, rl); err != nil {
			return err
		}
	}
	return nil
}

// syncListName resolves a name drift by timestamp. A remote list without a
// stamp is treated as unchanged unless the names differ and the local side
// did not change either.
func (p *pass) syncListName(ctx context.Context, m *models.ExternalEntityMap, local *models.List, rl *providers.RemoteList) error {
	if local.Name != rl.Name {
		localChanged := changedSince(local.UpdatedAt, p.lastSync)
		remoteNewer := rl.UpdatedAt != nil &&
			remoteChanged(*rl.UpdatedAt, p.lastSync, m.ExternalUpdatedAt) &&
			rl.UpdatedAt.After(local.UpdatedAt)

		if localChanged && !remoteNewer {
			updated, err := p.adapter.UpdateList(ctx, m.ExternalID, local)
			if err != nil {
				return fmt.Errorf("failed to rename remote list %s: %w", m.ExternalID, err)
			}
			p.out.Pushed++
			rl = updated
		} else {
			local.Name = rl.Name
			local.UpdatedAt = p.start
			if err := p.store.UpdateList(ctx, local); err != nil {
				return fmt.Errorf("failed to rename list %d: %w", local.ID.Remote, err)
			}
			p.out.Pulled++
		}
	}
	return p.saveListMapping(ctx, m, local.ID.Remote, rl)
}

func (p *pass) saveListMapping(ctx context.Context, m *models.ExternalEntityMap, localID int64, rl *providers.RemoteList) error {
	if m == nil {
		m = &models.ExternalEntityMap{
			UserID:     p.userID,
			Provider:   p.provider,
			EntityType: models.ExternalList,
			LocalID:    localID,
		}
	}
	m.ExternalID = rl.ExternalID
	m.ExternalEtag = rl.Etag
	if rl.UpdatedAt != nil {
		m.ExternalUpdatedAt = rl.UpdatedAt
	}
	if err := p.store.SaveMapping(ctx, m); err != nil {
		return fmt.Errorf("failed to save list mapping: %w", err)
	}
	p.listByExt[m.ExternalID] = localID
	p.listExt[localID] = m.ExternalID
	return nil
}

// dropListMapping forgets a list and the tasks mapped under it
func (p *pass) dropListMapping(ctx context.Context, m *models.ExternalEntityMap) error {
	if err := p.store.DeleteMapping(ctx, m.ID); err != nil {
		return fmt.Errorf("failed to delete list mapping: %w", err)
	}
	tasks, err := p.store.ListMappings(ctx, p.userID, p.provider, models.ExternalTask)
	if err != nil {
		return fmt.Errorf("failed to list task mappings: %w", err)
	}
	for _, tm := range tasks {
		if tm.ExternalListID != m.ExternalID {
			continue
		}
		if err := p.store.DeleteMapping(ctx, tm.ID); err != nil {
			return fmt.Errorf("failed to delete task mapping: %w", err)
		}
	}
	return nil
}

// reconcileLabels links remote labels the same way lists are linked.
// Tasks reference labels by name, so the name index is filled here.
func (p *pass) reconcileLabels(ctx context.Context, remote []providers.RemoteLabel) error {
	locals, err := p.store.ListLabels(ctx, p.userID)
	if err != nil {
		return fmt.Errorf("failed to list local labels: %w", err)
	}
	localByID := make(map[int64]*models.Label, len(locals))
	for _, l := range locals {
		localByID[l.ID.Remote] = l
	}
	remoteByID := make(map[string]*providers.RemoteLabel, len(remote))
	for i := range remote {
		remoteByID[remote[i].ExternalID] = &remote[i]
	}

	mappings, err := p.store.ListMappings(ctx, p.userID, p.provider, models.ExternalLabel)
	if err != nil {
		return fmt.Errorf("failed to list label mappings: %w", err)
	}

	handled := make(map[string]bool, len(remote))
	linked := make(map[int64]bool, len(locals))
	for _, m := range mappings {
		handled[m.ExternalID] = true
		local, haveLocal := localByID[m.LocalID]
		rl, haveRemote := remoteByID[m.ExternalID]

		switch {
		case !haveLocal:
			if haveRemote {
				if err := p.labels.DeleteLabel(ctx, m.ExternalID); err != nil && !errors.Is(err, providers.ErrNotFound) {
					return fmt.Errorf("failed to delete remote label %s: %w", m.ExternalID, err)
				}
				p.out.Deleted++
			}
			if err := p.store.DeleteMapping(ctx, m.ID); err != nil {
				return fmt.Errorf("failed to delete label mapping: %w", err)
			}
		case !haveRemote:
			if err := p.store.DeleteLabel(ctx, m.LocalID); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("failed to delete label %d: %w", m.LocalID, err)
			}
			p.out.Deleted++
			if err := p.store.DeleteMapping(ctx, m.ID); err != nil {
				return fmt.Errorf("failed to delete label mapping: %w", err)
			}
		default:
			linked[m.LocalID] = true
			if local.Name != rl.Name || local.Color != rl.Color {
				// У меток провайдера нет отметки времени: локальная правка побеждает, если была
				if changedSince(local.UpdatedAt, p.lastSync) {
					updated, err := p.labels.UpdateLabel(ctx, m.ExternalID, local)
					if err != nil {
						return fmt.Errorf("failed to update remote label %s: %w", m.ExternalID, err)
					}
					p.out.Pushed++
					rl = updated
				} else {
					local.Name, local.Color = rl.Name, rl.Color
					local.UpdatedAt = p.start
					if err := p.store.UpdateLabel(ctx, local); err != nil {
						return fmt.Errorf("failed to update label %d: %w", local.ID.Remote, err)
					}
					p.out.Pulled++
				}
			}
			if err := p.saveLabelMapping(ctx, m, local.ID.Remote, rl); err != nil {
				return err
			}
		}
	}

	for i := range remote {
		rl := &remote[i]
		if handled[rl.ExternalID] {
			continue
		}
		var local *models.Label
		if p.lastSync == nil {
			local = matchByName(locals, linked, rl.Name, func(l *models.Label) (int64, string) {
				return l.ID.Remote, l.Name
			})
		}
		if local == nil {
			local = &models.Label{
				UserID:    p.userID,
				Name:      rl.Name,
				Color:     rl.Color,
				CreatedAt: p.start,
				UpdatedAt: p.start,
			}
			if err := p.store.InsertLabel(ctx, local); err != nil {
				return fmt.Errorf("failed to import label %s: %w", rl.ExternalID, err)
			}
			p.out.Pulled++
		}
		linked[local.ID.Remote] = true
		if err := p.saveLabelMapping(ctx, nil, local.ID.Remote, rl); err != nil {
			return err
		}
	}

	for _, l := range locals {
		if linked[l.ID.Remote] {
			continue
		}
		rl, err := p.labels.CreateLabel(ctx, l)
		if err != nil {
			return fmt.Errorf("failed to create remote label for %d: %w", l.ID.Remote, err)
		}
		p.out.Pushed++
		if err := p.saveLabelMapping(ctx, nil, l.ID.Remote, rl); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) saveLabelMapping(ctx context.Context, m *models.ExternalEntityMap, localID int64, rl *providers.RemoteLabel) error {
	if m == nil {
		m = &models.ExternalEntityMap{
			UserID:     p.userID,
			Provider:   p.provider,
			EntityType: models.ExternalLabel,
			LocalID:    localID,
		}
	}
	m.ExternalID = rl.ExternalID
	if err := p.store.SaveMapping(ctx, m); err != nil {
		return fmt.Errorf("failed to save label mapping: %w", err)
	}
	p.labelByName[rl.Name] = localID
	p.labelName[localID] = rl.Name
	return nil
}

// matchByName returns the first entity not yet linked whose name equals name ignoring case
func matchByName[T any](items []T, linked map[int64]bool, name string, fields func(T) (int64, string)) T {
	var zero T
	name = strings.TrimSpace(name)
	for _, it := range items {
		id, n := fields(it)
		if !linked[id] && strings.EqualFold(strings.TrimSpace(n), name) {
			return it
		}
	}
	return zero
}

// labelNamesOf returns the provider names of the task's labels
func (p *pass) labelNamesOf(t *models.Task) []string {
	if !p.caps.Labels {
		return nil
	}
	names := make([]string, 0, len(t.LabelIDs))
	for _, ref := range t.LabelIDs {
		if name, ok := p.labelName[ref.Remote]; ok {
			names = append(names, name)
		}
	}
	return names
}

// labelRefsOf resolves provider label names to local labels; unknown names are skipped
func (p *pass) labelRefsOf(names []string) []models.Ref {
	var refs []models.Ref
	for _, name := range names {
		if id, ok := p.labelByName[name]; ok {
			refs = append(refs, models.RemoteRef(id))
		}
	}
	return refs
}
