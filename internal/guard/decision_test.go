package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
)

func activeAgency() *domain.Agency {
	return &domain.Agency{
		ID:       "agency-1",
		Name:     "Acme Immo",
		Slug:     "acme",
		OwnerID:  "owner-1",
		IsActive: true,
	}
}

func owner() *domain.User {
	return &domain.User{ID: "owner-1", Email: "owner@acme.test", Role: domain.RoleAgencyOwner, IsActive: true}
}

func proprietor() *domain.User {
	return &domain.User{ID: "prop-1", Email: "prop@acme.test", Role: domain.RoleProprietor, IsActive: true}
}

func admin() *domain.User {
	return &domain.User{ID: "admin-1", Email: "admin@platform.test", Role: domain.RoleAdmin, IsActive: true}
}

func TestEvaluate_Loading(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
	}{
		{"tenant loading", Inputs{Path: "/acme", TenantLoading: true}},
		{"session loading", Inputs{Path: "/acme/agency/dashboard", Agency: activeAgency(), SessionLoading: true}},
		{"both loading", Inputs{Path: "/acme", TenantLoading: true, SessionLoading: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.in)
			assert.Equal(t, ShowLoading, d.Outcome)
			assert.Empty(t, d.Location)
		})
	}
}

func TestEvaluate_UnknownTenant(t *testing.T) {
	// Unknown slug and fetch failure are indistinguishable: Agency is nil
	// either way and both land on the generic not-found page.
	d := Evaluate(Inputs{Path: "/ghost/agency/dashboard", Agency: nil, Identity: owner()})
	assert.Equal(t, RedirectTo, d.Outcome)
	assert.Equal(t, "/404", d.Location)
}

func TestEvaluate_InactiveTenant(t *testing.T) {
	agency := activeAgency()
	agency.IsActive = false

	t.Run("public pages still render", func(t *testing.T) {
		// The tenant resolved, so its public listing pages stay reachable;
		// only scoped access requires an active agency.
		for _, path := range []string{"/acme", "/acme/properties"} {
			d := Evaluate(Inputs{Path: path, Agency: agency})
			assert.Equal(t, Render, d.Outcome, path)
		}
	})

	t.Run("guarded scopes redirect to not-found", func(t *testing.T) {
		tests := []struct {
			path     string
			identity *domain.User
		}{
			{"/acme/agency/dashboard", nil},
			{"/acme/agency/dashboard", owner()},
			{"/acme/proprietaire/dashboard", proprietor()},
		}
		for _, tt := range tests {
			d := Evaluate(Inputs{Path: tt.path, Agency: agency, Identity: tt.identity})
			assert.Equal(t, RedirectTo, d.Outcome, tt.path)
			assert.Equal(t, "/404", d.Location, tt.path)
		}
	})
}

func TestEvaluate_PublicRendersWithoutSession(t *testing.T) {
	tests := []string{"/acme", "/acme/properties", "/acme/contact", "/"}

	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			d := Evaluate(Inputs{Path: path, Agency: activeAgency()})
			assert.Equal(t, Render, d.Outcome)
		})
	}
}

func TestEvaluate_GuardedScopesRequireSession(t *testing.T) {
	tests := []string{
		"/acme/agency/dashboard",
		"/acme/agency/change-password",
		"/acme/proprietaire/dashboard",
		"/acme/proprietaire/change-password",
	}

	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			d := Evaluate(Inputs{Path: path, Agency: activeAgency()})
			assert.Equal(t, RedirectTo, d.Outcome)
			assert.Equal(t, "/acme/agency/auth", d.Location)
		})
	}
}

func TestEvaluate_AgencyScope(t *testing.T) {
	agency := activeAgency()

	t.Run("owner renders", func(t *testing.T) {
		d := Evaluate(Inputs{Path: "/acme/agency/dashboard", Agency: agency, Identity: owner()})
		assert.Equal(t, Render, d.Outcome)
	})

	t.Run("proprietor is sent to their dashboard", func(t *testing.T) {
		d := Evaluate(Inputs{Path: "/acme/agency/dashboard", Agency: agency, Identity: proprietor()})
		assert.Equal(t, RedirectTo, d.Outcome)
		assert.Equal(t, "/acme/proprietaire/dashboard", d.Location)
	})

	t.Run("other identity is sent to the public home", func(t *testing.T) {
		other := &domain.User{ID: "client-1", Role: domain.RoleClient, IsActive: true}
		d := Evaluate(Inputs{Path: "/acme/agency/dashboard", Agency: agency, Identity: other})
		assert.Equal(t, RedirectTo, d.Outcome)
		assert.Equal(t, "/acme", d.Location)
	})

	t.Run("owner of another agency is sent to the public home", func(t *testing.T) {
		foreign := &domain.User{ID: "owner-2", Role: domain.RoleAgencyOwner, IsActive: true}
		d := Evaluate(Inputs{Path: "/acme/agency/dashboard", Agency: agency, Identity: foreign})
		assert.Equal(t, RedirectTo, d.Outcome)
		assert.Equal(t, "/acme", d.Location)
	})

	t.Run("change password renders once authenticated", func(t *testing.T) {
		// The ownership check does not apply on the change-password page.
		d := Evaluate(Inputs{Path: "/acme/agency/change-password", Agency: agency, Identity: proprietor()})
		assert.Equal(t, Render, d.Outcome)
	})
}

func TestEvaluate_ProprietorScope(t *testing.T) {
	agency := activeAgency()

	t.Run("proprietor renders", func(t *testing.T) {
		d := Evaluate(Inputs{Path: "/acme/proprietaire/dashboard", Agency: agency, Identity: proprietor()})
		assert.Equal(t, Render, d.Outcome)
	})

	t.Run("owner is sent to the services page", func(t *testing.T) {
		d := Evaluate(Inputs{Path: "/acme/proprietaire/dashboard", Agency: agency, Identity: owner()})
		assert.Equal(t, RedirectTo, d.Outcome)
		assert.Equal(t, "/acme/services", d.Location)
	})

	t.Run("other identity is sent to the public home", func(t *testing.T) {
		other := &domain.User{ID: "client-1", Role: domain.RoleClient, IsActive: true}
		d := Evaluate(Inputs{Path: "/acme/proprietaire/dashboard", Agency: agency, Identity: other})
		assert.Equal(t, RedirectTo, d.Outcome)
		assert.Equal(t, "/acme", d.Location)
	})

	t.Run("pending password change forces the change page", func(t *testing.T) {
		p := proprietor()
		p.MustChangePassword = true
		d := Evaluate(Inputs{Path: "/acme/proprietaire/dashboard", Agency: agency, Identity: p})
		assert.Equal(t, RedirectTo, d.Outcome)
		assert.Equal(t, "/acme/proprietaire/change-password", d.Location)
	})

	t.Run("pending password change does not redirect from the change page itself", func(t *testing.T) {
		p := proprietor()
		p.MustChangePassword = true
		d := Evaluate(Inputs{Path: "/acme/proprietaire/change-password", Agency: agency, Identity: p})
		assert.Equal(t, Render, d.Outcome)
	})
}

func TestEvaluate_AdminScope(t *testing.T) {
	agency := activeAgency()

	t.Run("admin renders", func(t *testing.T) {
		d := Evaluate(Inputs{Path: "/admin/agencies", Agency: agency, Identity: admin()})
		assert.Equal(t, Render, d.Outcome)
	})

	t.Run("anonymous is sent to admin auth", func(t *testing.T) {
		d := Evaluate(Inputs{Path: "/admin/agencies", Agency: agency})
		assert.Equal(t, RedirectTo, d.Outcome)
		assert.Equal(t, "/admin/auth", d.Location)
	})

	t.Run("non-admin is sent to admin auth", func(t *testing.T) {
		d := Evaluate(Inputs{Path: "/admin/agencies", Agency: agency, Identity: owner()})
		assert.Equal(t, RedirectTo, d.Outcome)
		assert.Equal(t, "/admin/auth", d.Location)
	})
}

// The single ordered decision table covers everything; these scenarios walk a
// navigation sequence through it.
func TestEvaluate_Scenarios(t *testing.T) {
	agency := activeAgency()

	t.Run("anonymous visitor browses then tries the back office", func(t *testing.T) {
		d := Evaluate(Inputs{Path: "/acme", Agency: agency})
		assert.Equal(t, Render, d.Outcome)

		d = Evaluate(Inputs{Path: "/acme/agency/dashboard", Agency: agency})
		assert.Equal(t, RedirectTo, d.Outcome)
		assert.Equal(t, "/acme/agency/auth", d.Location)
	})

	t.Run("proprietor with forced password change", func(t *testing.T) {
		p := proprietor()
		p.MustChangePassword = true

		d := Evaluate(Inputs{Path: "/acme/proprietaire/dashboard", Agency: agency, Identity: p})
		assert.Equal(t, "/acme/proprietaire/change-password", d.Location)

		d = Evaluate(Inputs{Path: "/acme/proprietaire/change-password", Agency: agency, Identity: p})
		assert.Equal(t, Render, d.Outcome)

		p.MustChangePassword = false
		d = Evaluate(Inputs{Path: "/acme/proprietaire/dashboard", Agency: agency, Identity: p})
		assert.Equal(t, Render, d.Outcome)
	})

	t.Run("ghost slug", func(t *testing.T) {
		d := Evaluate(Inputs{Path: "/ghost", Agency: nil})
		assert.Equal(t, RedirectTo, d.Outcome)
		assert.Equal(t, "/404", d.Location)
	})
}

func TestEvaluate_Deterministic(t *testing.T) {
	in := Inputs{Path: "/acme/agency/dashboard", Agency: activeAgency(), Identity: owner()}

	first := Evaluate(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(in))
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "loading", ShowLoading.String())
	assert.Equal(t, "redirect", RedirectTo.String())
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
