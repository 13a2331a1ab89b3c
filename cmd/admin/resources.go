package main

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/budadmin/pkg/adminsdk"
	"github.com/spf13/pflag"
)

// resource is the CLI surface of one catalog collection. extra holds verbs
// beyond list/get/delete that take a single argument.
type resource struct {
	list  func(ctx context.Context, api *adminsdk.APIClient, opts adminsdk.ListOptions) (any, error)
	get   func(ctx context.Context, api *adminsdk.APIClient, id string) (any, error)
	del   func(ctx context.Context, api *adminsdk.APIClient, id string) error
	extra map[string]func(ctx context.Context, api *adminsdk.APIClient, arg string) (any, error)
}

var resources = map[string]resource{
	"licenses": {
		list: func(ctx context.Context, api *adminsdk.APIClient, o adminsdk.ListOptions) (any, error) {
			return api.ListLicenses(ctx, adminsdk.LicenseListOptions{ListOptions: o})
		},
		get: func(ctx context.Context, api *adminsdk.APIClient, id string) (any, error) { return api.GetLicense(ctx, id) },
		del: func(ctx context.Context, api *adminsdk.APIClient, id string) error { return api.DeleteLicense(ctx, id) },
		extra: map[string]func(context.Context, *adminsdk.APIClient, string) (any, error){
			"key": func(ctx context.Context, api *adminsdk.APIClient, key string) (any, error) {
				return api.GetLicenseByKey(ctx, key)
			},
		},
	},
	"models": {
		list: func(ctx context.Context, api *adminsdk.APIClient, o adminsdk.ListOptions) (any, error) {
			return api.ListModels(ctx, adminsdk.ModelListOptions{ListOptions: o})
		},
		get: func(ctx context.Context, api *adminsdk.APIClient, id string) (any, error) { return api.GetModel(ctx, id) },
		del: func(ctx context.Context, api *adminsdk.APIClient, id string) error { return api.DeleteModel(ctx, id) },
		extra: map[string]func(context.Context, *adminsdk.APIClient, string) (any, error){
			"details": func(ctx context.Context, api *adminsdk.APIClient, uri string) (any, error) {
				return api.GetModelDetails(ctx, uri)
			},
			"compatible": func(ctx context.Context, api *adminsdk.APIClient, engine string) (any, error) {
				return api.GetCompatibleModels(ctx, adminsdk.CompatibleModelsOptions{Engine: engine})
			},
		},
	},
	"providers": {
		list: func(ctx context.Context, api *adminsdk.APIClient, o adminsdk.ListOptions) (any, error) {
			return api.ListProviders(ctx, o)
		},
		get: func(ctx context.Context, api *adminsdk.APIClient, id string) (any, error) { return api.GetProvider(ctx, id) },
		del: func(ctx context.Context, api *adminsdk.APIClient, id string) error { return api.DeleteProvider(ctx, id) },
	},
	"architectures": {
		list: func(ctx context.Context, api *adminsdk.APIClient, o adminsdk.ListOptions) (any, error) {
			return api.ListArchitectures(ctx, o)
		},
		get: func(ctx context.Context, api *adminsdk.APIClient, id string) (any, error) { return api.GetArchitecture(ctx, id) },
		del: func(ctx context.Context, api *adminsdk.APIClient, id string) error { return api.DeleteArchitecture(ctx, id) },
	},
	"engines": {
		list: func(ctx context.Context, api *adminsdk.APIClient, o adminsdk.ListOptions) (any, error) {
			return api.ListEngines(ctx, o)
		},
		get: func(ctx context.Context, api *adminsdk.APIClient, id string) (any, error) { return api.GetEngine(ctx, id) },
		del: func(ctx context.Context, api *adminsdk.APIClient, id string) error { return api.DeleteEngine(ctx, id) },
		extra: map[string]func(context.Context, *adminsdk.APIClient, string) (any, error){
			"versions": func(ctx context.Context, api *adminsdk.APIClient, engineID string) (any, error) {
				return api.ListEngineVersions(ctx, adminsdk.EngineVersionListOptions{EngineID: engineID})
			},
			"rules": func(ctx context.Context, api *adminsdk.APIClient, engineID string) (any, error) {
				return api.ListParserRules(ctx, engineID)
			},
			"compatible": func(ctx context.Context, api *adminsdk.APIClient, arch string) (any, error) {
				return api.GetCompatibleEngines(ctx, adminsdk.CompatibleEnginesOptions{ModelArchitecture: arch})
			},
		},
	},
}

func (c *cli) resource(ctx context.Context, name string, res resource, args []string) error {
	if len(args) == 0 {
		return usageError(name + " requires a verb")
	}
	verb, rest := args[0], args[1:]
	api := c.app.API()

	if verb == "list" {
		fs := pflag.NewFlagSet(name+" list", pflag.ContinueOnError)
		var opts adminsdk.ListOptions
		fs.IntVar(&opts.Page, "page", 0, "page number")
		fs.IntVar(&opts.PageSize, "page-size", 0, "page size")
		fs.StringVar(&opts.Search, "search", "", "search term")
		if err := fs.Parse(rest); err != nil {
			return usageError(err.Error())
		}

		out, err := res.list(ctx, api, opts)
		if err != nil {
			return err
		}
		return c.print(out)
	}

	if len(rest) != 1 {
		return usageError(fmt.Sprintf("%s %s takes exactly one argument", name, verb))
	}
	arg := rest[0]

	switch verb {
	case "get":
		out, err := res.get(ctx, api, arg)
		if err != nil {
			return err
		}
		return c.print(out)
	case "delete":
		if err := res.del(ctx, api, arg); err != nil {
			return err
		}
		fmt.Fprintf(c.stderr, "Deleted %s %s.\n", name, arg)
		return nil
	}

	fn, ok := res.extra[verb]
	if !ok {
		return usageError(fmt.Sprintf("unknown verb %q for %s", verb, name))
	}
	out, err := fn(ctx, api, arg)
	if err != nil {
		return err
	}
	return c.print(out)
}
