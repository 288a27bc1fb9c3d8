package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/post"
	"github.com/darasahq/darasa/core/user"
)

type postApi struct {
	svc        post.Service
	usrSvc     user.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerPostAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := postApi{
		svc:        deps.PostSvc,
		usrSvc:     deps.UserSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	g.GET("/home", api.home, jwt)

	pg := g.Group("/posts", jwt)
	pg.GET("", api.home)
	pg.POST("", api.create)
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update)
	pg.DELETE("/:id", api.destroy)

	g.GET("/users/:username/posts", api.byAuthor, jwt)
}

// Handlers

func (api *postApi) home(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	page, err := api.svc.Feed(ctx.Request().Context(), usr, pageNumber(ctx))
	if err != nil {
		return errors.Wrap(err, "querying feed")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *postApi) create(ctx echo.Context) error {
	var data post.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(api.validate, api.usrSvc.Codes()); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	p, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *postApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == post.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding post by ID")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *postApi) update(ctx echo.Context) error {
	var data post.UpdatePost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePost")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	p, err := api.svc.Update(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		switch errors.Cause(err) {
		case post.ErrNotFound:
			return errHttpNotFound
		case post.ErrNotAuthor:
			return errHttpForbidden
		}
		return errors.Wrap(err, "updating post")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *postApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		switch errors.Cause(err) {
		case post.ErrNotFound:
			return errHttpNotFound
		case post.ErrNotAuthor:
			return errHttpForbidden
		}
		return errors.Wrap(err, "deleting post")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *postApi) byAuthor(ctx echo.Context) error {
	author, err := api.usrSvc.GetByUsername(ctx.Request().Context(), ctx.Param("username"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding user by username")
	}

	page, err := api.svc.ByAuthor(ctx.Request().Context(), author, pageNumber(ctx))
	if err != nil {
		return errors.Wrap(err, "querying posts by author")
	}
	return ctx.JSON(http.StatusOK, page)
}

func pageNumber(ctx echo.Context) int {
	page, err := strconv.Atoi(ctx.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
