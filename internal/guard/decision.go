package guard

import (
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
)

// Outcome is what the guard tells the route composition to do.
type Outcome int

const (
	// ShowLoading: tenant or session resolution has not finished; render
	// nothing yet. Loading precedes every data-dependent check so the first
	// paint never flickers through a redirect.
	ShowLoading Outcome = iota
	// RedirectTo: navigate to Decision.Location instead of rendering.
	// Unauthorized access is always a silent redirect, never an error, so
	// tenancy and role information does not leak to unauthorized users.
	RedirectTo
	// Render: mount the requested page.
	Render
)

func (o Outcome) String() string {
	switch o {
	case ShowLoading:
		return "loading"
	case RedirectTo:
		return "redirect"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for one evaluation.
type Decision struct {
	Outcome  Outcome
	Location string // set only for RedirectTo
}

func loading() Decision             { return Decision{Outcome: ShowLoading} }
func render() Decision              { return Decision{Outcome: Render} }
func redirect(path string) Decision { return Decision{Outcome: RedirectTo, Location: path} }

// Inputs carries the resolved state the guard decides on. Evaluate is a pure
// function of these values: identical inputs always produce the identical
// decision.
type Inputs struct {
	// Path is the current navigation target.
	Path string
	// TenantLoading is true until the agency fetch settles, success or not.
	TenantLoading bool
	// Agency is the resolved tenant; nil means not found or fetch failed.
	// The two are deliberately conflated: both redirect to the generic
	// not-found page.
	Agency *domain.Agency
	// SessionLoading is true until the initial session fetch settles.
	SessionLoading bool
	// Identity is the authenticated principal; nil means no session.
	Identity *domain.User
}

// Evaluate runs the ordered decision table. Rules are evaluated strictly in
// order and the first match wins:
//
//  1. either resolution still loading        -> ShowLoading
//  2. no agency (missing or fetch failed)    -> redirect /404
//  3. public page                            -> Render, no session needed
//  4. guarded scope on an inactive agency    -> redirect /404; public pages
//     of an inactive agency still render, only scoped access needs an
//     active tenant
//  5. guarded scope without a session        -> redirect to tenant auth
//  6. agency scope: only the owning identity renders; a proprietor is sent
//     to their dashboard, anyone else to the public home
//  7. proprietor scope: only proprietors render, owners are sent to the
//     services page; a pending password change forces the change page first
//  8. anything left (the admin console)      -> admins render, the rest are
//     sent to the admin sign-in
//
// Tenant existence is checked before any role rule because rules 5 and 6
// dereference the agency's owner.
func Evaluate(in Inputs) Decision {
	if in.TenantLoading || in.SessionLoading {
		return loading()
	}

	if in.Agency == nil {
		return redirect(NotFoundPath)
	}

	slug := in.Agency.Slug
	cls := Classify(in.Path, slug)

	if cls.Class == RoutePublic {
		return render()
	}

	guarded := cls.Class == RouteAgencyScoped || cls.Class == RouteProprietorScoped

	if guarded && !in.Agency.IsActive {
		return redirect(NotFoundPath)
	}

	if guarded && in.Identity == nil {
		return redirect(AuthPath(slug))
	}

	switch cls.Class {
	case RouteAgencyScoped:
		if cls.ChangePassword {
			// Authenticated already (rule 4); the owner check does not
			// apply to the change-password page.
			return render()
		}
		if !in.Agency.IsOwnedBy(in.Identity.ID) {
			if in.Identity.Role == domain.RoleProprietor {
				return redirect(ProprietorDashboardPath(slug))
			}
			return redirect(PublicHomePath(slug))
		}
		return render()

	case RouteProprietorScoped:
		if in.Identity.Role != domain.RoleProprietor {
			if in.Agency.IsOwnedBy(in.Identity.ID) {
				return redirect(AgencyServicesPath(slug))
			}
			return redirect(PublicHomePath(slug))
		}
		if in.Identity.MustChangePassword && !cls.ChangePassword {
			return redirect(ProprietorChangePasswordPath(slug))
		}
		return render()
	}

	// Admin console and anything unclassified.
	if cls.Class == RouteAdminScoped && in.Identity != nil && in.Identity.Role == domain.RoleAdmin {
		return render()
	}
	return redirect(AdminAuthPath)
}
