package adminsdk

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Dashboard fetches the catalog totals along with the number of models each
// engine can serve. Each total is a one-item page so the requests are cheap,
// and they run concurrently. The first failure cancels the rest.
func (a *APIClient) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	one := ListOptions{Page: 1, PageSize: 1}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := a.ListLicenses(gctx, LicenseListOptions{ListOptions: one})
		if err == nil {
			d.Licenses = r.Total
		}
		return err
	})
	g.Go(func() error {
		r, err := a.ListModels(gctx, ModelListOptions{ListOptions: one})
		if err == nil {
			d.Models = r.Total
		}
		return err
	})
	g.Go(func() error {
		r, err := a.ListProviders(gctx, one)
		if err == nil {
			d.Providers = r.Total
		}
		return err
	})
	g.Go(func() error {
		r, err := a.ListEngines(gctx, one)
		if err == nil {
			d.Engines = r.Total
		}
		return err
	})
	g.Go(func() error {
		r, err := a.ListArchitectures(gctx, one)
		if err == nil {
			d.Architectures = r.Total
		}
		return err
	})

	for engine, total := range map[string]*int{
		EngineLiteLLM:    &d.LiteLLMModels,
		EngineTensorZero: &d.TensorZeroModels,
	} {
		g.Go(func() error {
			r, err := a.GetCompatibleModels(gctx, CompatibleModelsOptions{Engine: engine, Page: 1, Limit: 1})
			if err == nil {
				*total = r.Count()
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
