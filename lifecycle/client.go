package lifecycle

import (
	"context"
	"fmt"

	"github.com/c360/workplan/errors"
	"github.com/c360/workplan/resource"
)

// CreateClient validates and stores a new client, then processes its
// embedded workloads. A failing embedded workload never rolls the client
// back; the failure is reported alongside the created ones.
func (c *Coordinator) CreateClient(ctx context.Context, in resource.ClientInput) (ClientCreation, error) {
	if violations := c.validator.ClientInput(in); len(violations) > 0 {
		return ClientCreation{}, errors.NewValidation(component, "create_client", violations)
	}

	key := resource.ClientKey(in.AccountID)
	exists, err := c.docs.Exists(ctx, key)
	if err != nil {
		return ClientCreation{}, err
	}
	if exists {
		return ClientCreation{}, errors.WrapConflict(
			fmt.Errorf("el cliente %q (ID: %s) ya existe", in.Name, in.AccountID),
			component, "create_client", "store client "+in.AccountID)
	}

	client := resource.Client{
		AccountID:   in.AccountID,
		Name:        in.Name,
		ProjectType: in.ProjectType,
		Commitment:  in.Commitment,
		Summary:     resource.EmptySummary(),
		CreatedAt:   c.now().UTC(),
	}
	if err := c.docs.PutJSON(ctx, key, client); err != nil {
		return ClientCreation{}, err
	}
	if err := c.docs.PutMarker(ctx, resource.WorkloadPrefix(in.AccountID)); err != nil {
		return ClientCreation{}, err
	}
	c.logger.Info("client created", "account_id", in.AccountID, "client", in.Name)

	result := ClientCreation{Client: client, Workloads: []WorkloadCreation{}}
	if len(in.Workloads) == 0 {
		return result, nil
	}

	// Embedded workloads were validated with the client, so storage failures
	// are the only thing left to go wrong here.
	for i, win := range in.Workloads {
		creation, err := c.storeWorkload(ctx, &client, win)
		if err != nil {
			c.logger.Error("embedded workload failed",
				"account_id", in.AccountID, "index", i, "error", err)
			result.WorkloadFailures = append(result.WorkloadFailures, EmbeddedFailure{
				Index:  i,
				SDM:    win.SDM,
				Reason: "Error guardando workload",
				Detail: err.Error(),
			})
			continue
		}
		result.Workloads = append(result.Workloads, creation)
		if creation.Notified {
			result.Notified++
		}
	}

	// Persist the summary deltas accumulated while storing workloads.
	if err := c.docs.PutJSON(ctx, key, client); err != nil {
		return ClientCreation{}, err
	}
	result.Client = client
	return result, nil
}

// UpdateClient replaces a client's editable fields, leaving the summary and
// creation timestamp untouched.
func (c *Coordinator) UpdateClient(ctx context.Context, in resource.ClientUpdate) (resource.Client, error) {
	if violations := c.validator.ClientUpdate(in); len(violations) > 0 {
		return resource.Client{}, errors.NewValidation(component, "update_client", violations)
	}

	key := resource.ClientKey(in.AccountID)
	var existing resource.Client
	if err := c.docs.GetJSON(ctx, key, &existing); err != nil {
		if errors.IsNotFound(err) {
			return resource.Client{}, errors.WrapNotFound(
				fmt.Errorf("el cliente con ID %s no existe", in.AccountID),
				component, "update_client", "load client "+in.AccountID)
		}
		return resource.Client{}, err
	}

	now := c.now().UTC()
	updated := resource.Client{
		AccountID:   in.AccountID,
		Name:        in.Name,
		ProjectType: in.ProjectType,
		Commitment:  in.Commitment,
		Summary:     existing.Summary,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   &now,
	}
	if err := c.docs.PutJSON(ctx, key, updated); err != nil {
		return resource.Client{}, err
	}
	c.logger.Info("client updated", "account_id", in.AccountID)
	return updated, nil
}

// DeleteClient removes a client document and everything under its workload
// prefix, markers included.
func (c *Coordinator) DeleteClient(ctx context.Context, accountID string) (ClientDeletion, error) {
	key := resource.ClientKey(accountID)
	exists, err := c.docs.Exists(ctx, key)
	if err != nil {
		return ClientDeletion{}, err
	}
	if !exists {
		return ClientDeletion{}, errors.WrapNotFound(
			fmt.Errorf("no existe un cliente con ID: %s", accountID),
			component, "delete_client", "load client "+accountID)
	}

	if err := c.docs.Delete(ctx, key); err != nil {
		return ClientDeletion{}, err
	}
	removed, err := c.docs.DeletePrefix(ctx, resource.WorkloadPrefix(accountID))
	if err != nil {
		return ClientDeletion{}, err
	}

	c.logger.Info("client deleted", "account_id", accountID, "removed_objects", removed)
	return ClientDeletion{AccountID: accountID, RemovedObjects: removed}, nil
}
