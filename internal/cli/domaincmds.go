package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) listDomains(ctx context.Context) {
	domains, err := a.registrar.ListDomains(ctx)
	if err != nil {
		a.authHint(err)
		return
	}
	for _, d := range domains {
		renew := ""
		if d.AutoRenew == 1 {
			renew = "auto-renew"
		}
		fmt.Fprintf(a.out, "%-30s %-10s expires %-12s %s\n", d.Name, d.Status, d.ExpireDate, renew)
	}
}

func (a *App) checkDomain(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: check <domain> [domain...]")
		return
	}
	for _, domain := range args {
		av, err := a.registrar.CheckAvailability(ctx, domain)
		if err != nil {
			a.authHint(err)
			continue
		}
		if av.Available {
			fmt.Fprintf(a.out, "%s is available: first year %s, renewal %s\n", av.Domain, av.FirstYear, av.Price)
		} else {
			fmt.Fprintf(a.out, "%s is taken\n", av.Domain)
		}
	}
}

func (a *App) domainDetails(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: domain <name>")
		return
	}
	d, err := a.registrar.DomainDetails(ctx, args[0])
	if err != nil {
		a.authHint(err)
		return
	}
	fmt.Fprintln(a.out, "Nameservers:", strings.Join(d.Nameservers, ", "))
	for _, f := range d.Forwards {
		fmt.Fprintf(a.out, "Forward: %s -> %s (%s)\n", f.Subdomain, f.Location, f.Type)
	}
}
