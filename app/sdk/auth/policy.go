package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/jcpaschoal/propman/business/types/actions"
	"github.com/jcpaschoal/propman/business/types/resource"
	"github.com/jcpaschoal/propman/business/types/role"
)

// No subject is a superuser: administrators work through the admin tooling.
const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// member holds the grants every signed in account has.
const member = "ROLE:MEMBER"

type grant struct {
	res  resource.Resource
	acts []actions.Action
}

var (
	all   = []actions.Action{actions.Get, actions.Create, actions.Update, actions.Delete}
	read  = []actions.Action{actions.Get}
	write = []actions.Action{actions.Get, actions.Update}
)

var policies = map[string][]grant{
	member: {
		{res: resource.User, acts: write},
	},
	subject(role.Company): {
		{res: resource.Building, acts: all},
		{res: resource.Apartment, acts: all},
		{res: resource.Tenancy, acts: all},
		{res: resource.Invitation, acts: []actions.Action{actions.Get, actions.Create, actions.Delete}},
		{res: resource.Issue, acts: write},
		{res: resource.Report, acts: read},
	},
	subject(role.Tenant): {
		{res: resource.Home, acts: read},
		{res: resource.Issue, acts: []actions.Action{actions.Get, actions.Create}},
	},
}

func subject(r role.Role) string {
	return "ROLE:" + r.String()
}

func newEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	for sub, grants := range policies {
		for _, g := range grants {
			for _, act := range g.acts {
				if _, err := e.AddPolicy(sub, g.res.String(), act.String()); err != nil {
					return nil, fmt.Errorf("add policy: sub[%s] obj[%s] act[%s]: %w", sub, g.res, act, err)
				}
			}
		}
	}

	for _, r := range []role.Role{role.Admin, role.Company, role.Tenant} {
		if _, err := e.AddGroupingPolicy(subject(r), member); err != nil {
			return nil, fmt.Errorf("add grouping: role[%s]: %w", r, err)
		}
	}

	return e, nil
}
