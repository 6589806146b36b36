package domain

import (
	"context"

	"github.com/kapilduraphe/okta-mcp-server/internal/command"
	"github.com/kapilduraphe/okta-mcp-server/internal/directory"
	"github.com/kapilduraphe/okta-mcp-server/internal/schema"
)

// GroupListCommand lists directory groups.
func GroupListCommand(dir directory.Client) command.Command {
	minLimit, maxLimit := schema.IntRange(1, 200)
	return command.Command{
		Name:        "okta_list_groups",
		Description: "Lists directory groups",
		Input: []schema.Field{
			{Name: "limit", Type: schema.TypeInt, Default: 50, Min: minLimit, Max: maxLimit, Description: "maximum groups to return"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			groups, err := dir.ListGroups(ctx, intArg(args, "limit"))
			if err != nil {
				return nil, err
			}
			return command.Text(renderGroups(groups)), nil
		},
	}
}

// GroupAddMemberCommand adds a user to a group.
func GroupAddMemberCommand(dir directory.Client) command.Command {
	return command.Command{
		Name:        "okta_add_user_to_group",
		Description: "Adds a user to a group",
		Input: []schema.Field{
			{Name: "group_id", Type: schema.TypeString, Required: true},
			{Name: "user", Type: schema.TypeString, Required: true, Description: "user id or login"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			groupID := stringArg(args, "group_id")
			user := stringArg(args, "user")
			if err := dir.AssignToGroup(ctx, groupID, user); err != nil {
				return nil, err
			}
			return command.Textf("Added user %s to group %s.", user, groupID), nil
		},
	}
}

// GroupRemoveMemberCommand removes a user from a group.
func GroupRemoveMemberCommand(dir directory.Client) command.Command {
	return command.Command{
		Name:        "okta_remove_user_from_group",
		Description: "Removes a user from a group",
		Input: []schema.Field{
			{Name: "group_id", Type: schema.TypeString, Required: true},
			{Name: "user", Type: schema.TypeString, Required: true, Description: "user id or login"},
		},
		Handler: func(ctx context.Context, args map[string]any) (*command.Result, error) {
			groupID := stringArg(args, "group_id")
			user := stringArg(args, "user")
			if err := dir.RemoveFromGroup(ctx, groupID, user); err != nil {
				return nil, err
			}
			return command.Textf("Removed user %s from group %s.", user, groupID), nil
		},
	}
}
