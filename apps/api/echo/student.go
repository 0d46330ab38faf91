package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/DARIENBATHALTER/wasabi/core/flag"
	"github.com/DARIENBATHALTER/wasabi/core/student"
)

type studentApi struct {
	svc     *student.Service
	flagSvc *flag.Service
}

func registerStudentAPI(g *echo.Group, svc *student.Service, flagSvc *flag.Service) {
	api := studentApi{
		svc:     svc,
		flagSvc: flagSvc,
	}

	sg := g.Group("/students")
	sg.GET("", api.query)

	// detail endpoints
	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.GET("/flags", api.flags)
	dg.GET("/flags/colors", api.flagColors)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	filter := bindStudentFilter(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	stu, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) flags(ctx echo.Context) error {
	results, err := api.flagSvc.EvaluateStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "evaluating student flags")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *studentApi) flagColors(ctx echo.Context) error {
	results, err := api.flagSvc.EvaluateStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "evaluating student flags")
	}
	return ctx.JSON(http.StatusOK, flag.RepresentativeColors(results))
}
