package domain

import (
	"context"

	"github.com/kapilduraphe/okta-mcp-server/internal/command"
	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
	"github.com/kapilduraphe/okta-mcp-server/internal/schema"
)

// UserGetCommand looks up one user by id or login. A missing user is
// informational here, not an error: lookups answer "is this user there".
func UserGetCommand(dir directory.Client) command.Command {
	return command.Command{
		Name:        "okta_get_user",
		Description: "Fetches a user by id or login",
		Input: []schema.Field{
			{Name: "user", Type: schema.TypeString, Required: true, Description: "user id or login"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			record, err := dir.Get(ctx, stringArg(args, "user"))
			if directory.IsNotFound(err) {
				return command.Textf("No user found for %q.", stringArg(args, "user")), nil
			}
			if err != nil {
				return nil, err
			}
			return command.Text(renderRecord(record)), nil
		},
	}
}

// UserListCommand lists users, optionally with a native filter expression.
func UserListCommand(dir directory.Client) command.Command {
	minLimit, maxLimit := schema.IntRange(1, 200)
	return command.Command{
		Name:        "okta_list_users",
		Description: "Lists users, optionally filtered by a directory search expression",
		Input: []schema.Field{
			{Name: "filter", Type: schema.TypeString, Description: "native search expression, e.g. profile.department eq \"Engineering\""},
			{Name: "limit", Type: schema.TypeInt, Default: 50, Min: minLimit, Max: maxLimit, Description: "maximum users to return"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			limit := intArg(args, "limit")
			var records []directory.Record
			var err error
			if expression := stringArg(args, "filter"); expression != "" {
				records, err = dir.ListFiltered(ctx, expression, limit)
			} else {
				records, err = dir.ListAll(ctx, limit)
			}
			if err != nil {
				return nil, err
			}
			return command.Text(renderRecordList(records)), nil
		},
	}
}

// UserCreateCommand creates a user with the contact identifier as login.
func UserCreateCommand(dir directory.Client) command.Command {
	return command.Command{
		Name:        "okta_create_user",
		Description: "Creates a user",
		Input: []schema.Field{
			{Name: "email", Type: schema.TypeString, Required: true, Description: "contact identifier, used as the login"},
			{Name: "first_name", Type: schema.TypeString, Required: true},
			{Name: "last_name", Type: schema.TypeString, Required: true},
			{Name: "activate", Type: schema.TypeBool, Default: false, Description: "activate immediately after creation"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			profile := map[string]string{
				"login":     stringArg(args, "email"),
				"email":     stringArg(args, "email"),
				"firstName": stringArg(args, "first_name"),
				"lastName":  stringArg(args, "last_name"),
			}
			record, err := dir.Create(ctx, profile, boolArg(args, "activate"))
			if err != nil {
				return nil, err
			}
			return command.Textf("Created user %s with status %s.", record.ID, record.Status), nil
		},
	}
}

// UserActivateCommand activates a user. The target must exist; a missing
// user is a hard error because the operation has nothing to act on.
func UserActivateCommand(dir directory.Client) command.Command {
	return command.Command{
		Name:        "okta_activate_user",
		Description: "Activates a user, optionally sending the welcome notification",
		Input: []schema.Field{
			{Name: "user", Type: schema.TypeString, Required: true, Description: "user id or login"},
			{Name: "send_email", Type: schema.TypeBool, Default: false, Description: "send the welcome notification"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			user := stringArg(args, "user")
			if err := dir.SetActivation(ctx, user, boolArg(args, "send_email")); err != nil {
				return nil, err
			}
			return command.Textf("Activated user %s.", user), nil
		},
	}
}

// UserDeactivateCommand deactivates a user.
func UserDeactivateCommand(dir directory.Client) command.Command {
	return command.Command{
		Name:        "okta_deactivate_user",
		Description: "Deactivates a user",
		Input: []schema.Field{
			{Name: "user", Type: schema.TypeString, Required: true, Description: "user id or login"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			user := stringArg(args, "user")
			if err := dir.Deactivate(ctx, user); err != nil {
				return nil, err
			}
			return command.Textf("Deactivated user %s.", user), nil
		},
	}
}

// UserDeleteCommand removes a user. Directory semantics require the user to
// be deactivated first; the directory's failure message passes through.
func UserDeleteCommand(dir directory.Client) command.Command {
	return command.Command{
		Name:        "okta_delete_user",
		Description: "Deletes a deactivated user",
		Input: []schema.Field{
			{Name: "user", Type: schema.TypeString, Required: true, Description: "user id or login"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			user := stringArg(args, "user")
			if err := dir.Delete(ctx, user); err != nil {
				return nil, err
			}
			return command.Textf("Deleted user %s.", user), nil
		},
	}
}

// ApplicationGrantCommand assigns an application to a user.
func ApplicationGrantCommand(dir directory.Client) command.Command {
	return command.Command{
		Name:        "okta_assign_application",
		Description: "Grants a user access to an application",
		Input: []schema.Field{
			{Name: "app_id", Type: schema.TypeString, Required: true},
			{Name: "user", Type: schema.TypeString, Required: true, Description: "user id or login"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			appID := stringArg(args, "app_id")
			user := stringArg(args, "user")
			if err := dir.GrantApplication(ctx, appID, user); err != nil {
				return nil, err
			}
			return command.Textf("Granted application %s to user %s.", appID, user), nil
		},
	}
}
