package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/grade"
	"github.com/darasahq/darasa/core/user"
)

type gradeApi struct {
	svc      grade.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := gradeApi{
		svc:      deps.GradeSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	gg := g.Group("/grades", jwt)
	gg.GET("", api.home)

	// teacher-only sheet endpoints
	teacher := teacherMiddleware()
	gg.GET("/new/:classAccess", api.newSheet, teacher)
	gg.GET("/:classAccess", api.classTitles, teacher)
	gg.GET("/:classAccess/titles/:gradeTitle", api.classSheet, teacher)
	gg.POST("/update", api.updateScores, teacher)
}

// Handlers

// home branches on role: teachers pick a class section, students get their
// own grade list.
func (api *gradeApi) home(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if usr.IsTeacher() {
		return ctx.JSON(http.StatusOK, ClassPickerResponse{Classes: api.usrSvc.Codes().Classes()})
	}

	grades, err := api.svc.ForStudent(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing student grades")
	}
	return ctx.JSON(http.StatusOK, StudentGradesResponse{Grades: grades})
}

func (api *gradeApi) classTitles(ctx echo.Context) error {
	access := ctx.Param("classAccess")
	titles, err := api.svc.ClassTitles(ctx.Request().Context(), access)
	if err != nil {
		if errors.Cause(err) == grade.ErrUnknownClass {
			return errHttpNotFound
		}
		return errors.Wrap(err, "listing class grade titles")
	}

	name, _ := api.usrSvc.Codes().ClassName(access)
	return ctx.JSON(http.StatusOK, ClassTitlesResponse{
		ClassAccess: strings.ToUpper(access),
		ClassName:   name,
		GradeTitles: titles,
	})
}

func (api *gradeApi) classSheet(ctx echo.Context) error {
	return api.sheet(ctx, ctx.Param("classAccess"), ctx.Param("gradeTitle"))
}

// newSheet returns the all-zero sheet used to enter a brand-new assignment.
func (api *gradeApi) newSheet(ctx echo.Context) error {
	return api.sheet(ctx, ctx.Param("classAccess"), "")
}

func (api *gradeApi) sheet(ctx echo.Context, access, title string) error {
	sheet, err := api.svc.ClassSheet(ctx.Request().Context(), access, title)
	if err != nil {
		if errors.Cause(err) == grade.ErrUnknownClass {
			return errHttpNotFound
		}
		return errors.Wrap(err, "building class score sheet")
	}
	return ctx.JSON(http.StatusOK, sheet)
}

func (api *gradeApi) updateScores(ctx echo.Context) error {
	var data grade.UpdateScores
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateScores")
	}
	if err := data.Validate(api.validate, api.usrSvc.Codes()); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.Update(ctx.Request().Context(), usr, data); err != nil {
		return err
	}

	// hand the refreshed sheet back for display
	return api.sheet(ctx, data.ClassAccess, data.GradeTitle)
}

type (
	ClassPickerResponse struct {
		Classes map[string]string `json:"classes"` // access code -> class name
	}

	StudentGradesResponse struct {
		Grades []grade.Grade `json:"grades"`
	}

	ClassTitlesResponse struct {
		ClassAccess string   `json:"class_access"`
		ClassName   string   `json:"class_name"`
		GradeTitles []string `json:"grade_titles"`
	}
)
