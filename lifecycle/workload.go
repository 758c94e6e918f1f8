package lifecycle

import (
	"context"
	"fmt"

	"github.com/c360/workplan/errors"
	"github.com/c360/workplan/notify"
	"github.com/c360/workplan/resource"
	"github.com/c360/workplan/summary"
)

// CreateWorkload validates and stores a workload for an existing client,
// applying the summary delta and sending the assignment notification.
func (c *Coordinator) CreateWorkload(ctx context.Context, in resource.WorkloadInput) (WorkloadCreation, error) {
	if violations := c.validator.WorkloadInput(in); len(violations) > 0 {
		return WorkloadCreation{}, errors.NewValidation(component, "create_workload", violations)
	}

	clientKey := resource.ClientKey(in.ClientID)
	var client resource.Client
	if err := c.docs.GetJSON(ctx, clientKey, &client); err != nil {
		if errors.IsNotFound(err) {
			return WorkloadCreation{}, errors.WrapNotFound(
				fmt.Errorf("el cliente con ID %s no existe", in.ClientID),
				component, "create_workload", "load client "+in.ClientID)
		}
		return WorkloadCreation{}, err
	}

	creation, err := c.storeWorkload(ctx, &client, in)
	if err != nil {
		return WorkloadCreation{}, err
	}
	if err := c.docs.PutJSON(ctx, clientKey, client); err != nil {
		return WorkloadCreation{}, err
	}
	return creation, nil
}

// storeWorkload writes a new workload under the client's partition, applies
// the summary delta to client in place, and attempts the assignment
// notification. The caller persists the client document afterwards.
func (c *Coordinator) storeWorkload(ctx context.Context, client *resource.Client, in resource.WorkloadInput) (WorkloadCreation, error) {
	year, month, err := resource.PeriodOf(in.StartDate)
	if err != nil {
		return WorkloadCreation{}, errors.NewValidation(component, "create_workload",
			[]string{"fecha_inicio: formato inválido"})
	}

	if err := c.partitions.Ensure(ctx, client.AccountID, year, month); err != nil {
		return WorkloadCreation{}, err
	}

	w := resource.Workload{
		ID:           c.newID(),
		ClientID:     client.AccountID,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Period:       resource.Period(year, month),
		SDM:          in.SDM,
		Status:       in.Status,
		Owner:        in.Owner,
		Notification: resource.NotificationPending,
		CreatedAt:    c.now().UTC(),
	}
	key := resource.WorkloadKey(client.AccountID, year, month, w.ID)
	if err := c.docs.PutJSON(ctx, key, w); err != nil {
		return WorkloadCreation{}, err
	}

	summary.Delta(&client.Summary, w)
	c.logger.Info("workload created",
		"workload_id", w.ID, "account_id", client.AccountID, "period", w.Period)

	notified := false
	if err := c.notifier.Notify(ctx, notify.KindAssigned, w, client.Name); err != nil {
		w.NotificationError = errors.Detail(err)
	} else {
		notified = true
		w.Notification = resource.NotificationSent
	}

	// Persist the final notification state; pending plus the recorded error
	// is still a successfully created workload.
	if err := c.docs.PutJSON(ctx, key, w); err != nil {
		return WorkloadCreation{}, err
	}
	return WorkloadCreation{Workload: w, Notified: notified}, nil
}

// UpdateWorkload replaces a workload located by its current partition
// coordinates, moving it when the start date changed partitions, refreshing
// the client summary when status or location changed, and notifying both
// owners on reassignment.
func (c *Coordinator) UpdateWorkload(ctx context.Context, in resource.WorkloadUpdate) (WorkloadMutation, error) {
	if violations := c.validator.WorkloadUpdate(in); len(violations) > 0 {
		return WorkloadMutation{}, errors.NewValidation(component, "update_workload", violations)
	}

	var client resource.Client
	if err := c.docs.GetJSON(ctx, resource.ClientKey(in.ClientID), &client); err != nil {
		if errors.IsNotFound(err) {
			return WorkloadMutation{}, errors.WrapNotFound(
				fmt.Errorf("el cliente con ID %s no existe", in.ClientID),
				component, "update_workload", "load client "+in.ClientID)
		}
		return WorkloadMutation{}, err
	}

	year, month, err := resource.SplitPeriod(in.Period)
	if err != nil {
		return WorkloadMutation{}, errors.NewValidation(component, "update_workload",
			[]string{"periodo: formato inválido"})
	}

	oldKey := resource.WorkloadKey(in.ClientID, year, month, in.ID)
	var existing resource.Workload
	if err := c.docs.GetJSON(ctx, oldKey, &existing); err != nil {
		if errors.IsNotFound(err) {
			return WorkloadMutation{}, errors.WrapNotFound(
				fmt.Errorf("el workload con ID %s no existe en %s",
					in.ID, resource.WorkloadPrefix(in.ClientID, year, month)),
				component, "update_workload", "load workload "+in.ID)
		}
		return WorkloadMutation{}, err
	}

	newYear, newMonth, err := resource.PeriodOf(in.StartDate)
	if err != nil {
		return WorkloadMutation{}, errors.NewValidation(component, "update_workload",
			[]string{"fecha_inicio: formato inválido"})
	}

	changes := Changes{
		Owner:  existing.Owner != in.Owner,
		Status: existing.Status != in.Status,
		Date:   newYear != resource.NormalizeYear(year) || newMonth != resource.NormalizeMonth(month),
	}

	now := c.now().UTC()
	notification := existing.Notification
	if notification == "" {
		notification = resource.NotificationPending
	}
	updated := resource.Workload{
		ID:           in.ID,
		ClientID:     in.ClientID,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Period:       resource.Period(newYear, newMonth),
		SDM:          in.SDM,
		Status:       in.Status,
		Owner:        in.Owner,
		Notification: notification,
		CreatedAt:    existing.CreatedAt,
		UpdatedAt:    &now,
	}

	if changes.Date {
		c.logger.Info("moving workload",
			"workload_id", in.ID,
			"from", resource.Period(year, month), "to", updated.Period)
		if err := c.partitions.Ensure(ctx, in.ClientID, newYear, newMonth); err != nil {
			return WorkloadMutation{}, err
		}
		newKey := resource.WorkloadKey(in.ClientID, newYear, newMonth, in.ID)
		if err := c.docs.PutJSON(ctx, newKey, updated); err != nil {
			return WorkloadMutation{}, err
		}
		if err := c.docs.Delete(ctx, oldKey); err != nil {
			return WorkloadMutation{}, err
		}
		c.partitions.CleanupIfEmpty(ctx, in.ClientID, year, month)
	} else {
		if err := c.docs.PutJSON(ctx, oldKey, updated); err != nil {
			return WorkloadMutation{}, err
		}
	}

	result := WorkloadMutation{Workload: updated, Changes: changes}

	if changes.Status || changes.Date {
		if _, err := c.summaries.Refresh(ctx, in.ClientID); err != nil {
			// The workload itself is already stored; a failed rescan must
			// not fail the update.
			c.logger.Error("summary refresh failed after workload update",
				"account_id", in.ClientID, "workload_id", in.ID, "error", err)
		} else {
			result.SummaryRefreshed = true
		}
	}

	if changes.Owner {
		result.OwnerChange = &OwnerChange{Canceled: existing.Owner, Assigned: in.Owner}
		previous := updated
		previous.Owner = existing.Owner
		if err := c.notifier.Notify(ctx, notify.KindCanceled, previous, client.Name); err != nil {
			c.logger.Error("cancellation notice failed",
				"workload_id", in.ID, "to", existing.Owner, "error", err)
		}
		if err := c.notifier.Notify(ctx, notify.KindAssigned, updated, client.Name); err != nil {
			c.logger.Error("assignment notice failed",
				"workload_id", in.ID, "to", in.Owner, "error", err)
		}
	}

	c.logger.Info("workload updated", "workload_id", in.ID, "account_id", in.ClientID,
		"owner_changed", changes.Owner, "status_changed", changes.Status, "moved", changes.Date)
	return result, nil
}

// DeleteWorkload removes a workload addressed by exact partition
// coordinates, cleans up partitions it emptied, and refreshes the client
// summary. A failed refresh leaves the delete in place and flags the
// summary as stale.
func (c *Coordinator) DeleteWorkload(ctx context.Context, req resource.DeleteRequest) (WorkloadDeletion, error) {
	if violations := c.validator.DeleteRequest(req); len(violations) > 0 {
		return WorkloadDeletion{}, errors.NewValidation(component, "delete_workload", violations)
	}

	key := resource.WorkloadKey(req.ClientID, req.Year, req.Month, req.ID)
	exists, err := c.docs.Exists(ctx, key)
	if err != nil {
		return WorkloadDeletion{}, err
	}
	if !exists {
		return WorkloadDeletion{}, errors.WrapNotFound(
			fmt.Errorf("no existe la carga de trabajo con ID: %s (cliente: %s, año: %s, mes: %s)",
				req.ID, req.ClientID, req.Year, req.Month),
			component, "delete_workload", "load workload "+req.ID)
	}

	if err := c.docs.Delete(ctx, key); err != nil {
		return WorkloadDeletion{}, err
	}
	c.logger.Info("workload deleted", "workload_id", req.ID, "account_id", req.ClientID)

	result := WorkloadDeletion{
		WorkloadID:        req.ID,
		AccountID:         req.ClientID,
		CleanedPartitions: c.partitions.CleanupIfEmpty(ctx, req.ClientID, req.Year, req.Month),
	}

	sum, err := c.summaries.Refresh(ctx, req.ClientID)
	if err != nil {
		c.logger.Error("summary refresh failed after workload delete",
			"account_id", req.ClientID, "workload_id", req.ID, "error", err)
		result.SummaryStale = true
		return result, nil
	}
	result.Summary = sum
	return result, nil
}
