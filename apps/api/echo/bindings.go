package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/DARIENBATHALTER/wasabi/core/student"
)

var (
	searchParam    = "search"
	gradeParam     = "grade"
	classNameParam = "className"
)

func bindStudentFilter(ctx echo.Context) student.QueryFilter {
	filter := student.QueryFilter{
		Search:    ctx.QueryParam(searchParam),
		Grade:     ctx.QueryParam(gradeParam),
		ClassName: ctx.QueryParam(classNameParam),
	}
	filter.Clean()
	return filter
}
