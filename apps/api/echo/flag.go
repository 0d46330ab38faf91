package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/DARIENBATHALTER/wasabi/core/flag"
)

type flagApi struct {
	svc      *flag.Service
	validate *validator.Validate
}

func registerFlagAPI(g *echo.Group, svc *flag.Service, validate *validator.Validate) {
	api := flagApi{
		svc:      svc,
		validate: validate,
	}

	fg := g.Group("/flag-rules")
	fg.GET("", api.query)
	fg.POST("", api.create)

	// detail endpoints
	dg := fg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/toggle", api.toggle)
	dg.POST("/evaluate/:studentID", api.evaluate)
}

// Handlers

func (api *flagApi) create(ctx echo.Context) error {
	var data flag.NewRule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rule, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating rule")
	}
	return ctx.JSON(http.StatusCreated, rule)
}

func (api *flagApi) query(ctx echo.Context) error {
	rules, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying rules")
	}
	return ctx.JSON(http.StatusOK, rules)
}

func (api *flagApi) retrieve(ctx echo.Context) error {
	rule, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting rule")
	}
	return ctx.JSON(http.StatusOK, rule)
}

func (api *flagApi) update(ctx echo.Context) error {
	origRule, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting rule")
	}

	var data flag.UpdateRule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRule")
	}
	if err := data.Validate(origRule, api.validate); err != nil {
		return err
	}

	rule, err := api.svc.Update(ctx.Request().Context(), origRule.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating rule")
	}
	return ctx.JSON(http.StatusOK, rule)
}

func (api *flagApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting rule")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *flagApi) toggle(ctx echo.Context) error {
	rule, err := api.svc.ToggleActive(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "toggling rule")
	}
	return ctx.JSON(http.StatusOK, rule)
}

func (api *flagApi) evaluate(ctx echo.Context) error {
	ev, err := api.svc.EvaluateRule(ctx.Request().Context(), ctx.Param("id"), ctx.Param("studentID"))
	if err != nil {
		return errors.Wrap(err, "evaluating rule")
	}
	return ctx.JSON(http.StatusOK, ev)
}
