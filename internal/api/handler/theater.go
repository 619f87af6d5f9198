package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-booking/internal/api"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/application"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-booking/internal/domain/theater"
)

type TheaterHandler struct {
	service TheaterServiceInterface
}

func NewTheaterHandler(s TheaterServiceInterface) *TheaterHandler {
	return &TheaterHandler{service: s}
}

type CreateMovieRequest struct {
	Name        string  `json:"name" validate:"required" example:"Interstellar"`
	Genre       string  `json:"genre" validate:"required" example:"Drama"`
	Language    string  `json:"language" validate:"required" example:"English"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=10" example:"8.6"`
	Cast        string  `json:"cast" example:"Matthew McConaughey, Anne Hathaway"`
	Description string  `json:"description"`
	TrailerURL  string  `json:"trailer_url" example:"https://www.youtube.com/watch?v=zSWdZVtXT7E"`
}

type MovieResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Genre           string  `json:"genre"`
	Language        string  `json:"language"`
	Rating          float64 `json:"rating"`
	Cast            string  `json:"cast,omitempty"`
	Description     string  `json:"description,omitempty"`
	TrailerURL      string  `json:"trailer_url,omitempty"`
	TrailerEmbedURL string  `json:"trailer_embed_url,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func toMovieResponse(m *theater.Movie) MovieResponse {
	return MovieResponse{
		ID:              m.ID,
		Name:            m.Name,
		Genre:           m.Genre,
		Language:        m.Language,
		Rating:          m.Rating,
		Cast:            m.Cast,
		Description:     m.Description,
		TrailerURL:      m.TrailerURL,
		TrailerEmbedURL: m.TrailerEmbedURL(),
		CreatedAt:       m.CreatedAt.Format(time.RFC3339),
	}
}

// ScheduleTheaterRequest は上映回の作成リクエスト
// seat_numbers を省略した場合は seat_prefix + 連番で seat_count 席を作成する
type ScheduleTheaterRequest struct {
	Name        string   `json:"name" validate:"required" example:"Screen 1"`
	ShowTime    string   `json:"show_time" validate:"required" example:"2026-01-10T18:00:00+09:00"`
	TicketPrice int      `json:"ticket_price" validate:"gte=0" example:"1800"`
	SeatNumbers []string `json:"seat_numbers" validate:"omitempty,max=1000,dive,required,max=10"`
	SeatPrefix  string   `json:"seat_prefix" example:"A"`
	SeatCount   int      `json:"seat_count" validate:"gte=0,lte=1000" example:"20"`
}

type TheaterResponse struct {
	ID          string         `json:"id"`
	MovieID     string         `json:"movie_id"`
	Name        string         `json:"name"`
	ShowTime    string         `json:"show_time"`
	TicketPrice int            `json:"ticket_price"`
	Seats       []SeatResponse `json:"seats,omitempty"`
}

func toTheaterResponse(t *theater.Theater) TheaterResponse {
	return TheaterResponse{
		ID:          t.ID,
		MovieID:     t.MovieID,
		Name:        t.Name,
		ShowTime:    t.ShowTime.Format(time.RFC3339),
		TicketPrice: t.TicketPrice,
	}
}

// CreateMovie godoc
// @Summary 映画を登録
// @Tags movies
// @Accept json
// @Produce json
// @Param request body CreateMovieRequest true "映画情報"
// @Success 201 {object} MovieResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /movies [post]
func (h *TheaterHandler) CreateMovie(c echo.Context) error {
	var req CreateMovieRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	m, err := h.service.CreateMovie(c.Request().Context(), application.CreateMovieInput{
		Name:        req.Name,
		Genre:       req.Genre,
		Language:    req.Language,
		Rating:      req.Rating,
		Cast:        req.Cast,
		Description: req.Description,
		TrailerURL:  req.TrailerURL,
	})
	if err != nil {
		return api.NewHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toMovieResponse(m))
}

// ListMovies godoc
// @Summary 映画一覧を取得
// @Tags movies
// @Produce json
// @Param search query string false "映画名の部分一致"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} MovieResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /movies [get]
func (h *TheaterHandler) ListMovies(c echo.Context) error {
	page, err := bindPageQuery(c)
	if err != nil {
		return err
	}

	movies, err := h.service.ListMovies(c.Request().Context(), c.QueryParam("search"), page.Limit, page.Offset)
	if err != nil {
		return api.NewHTTPError(err)
	}
	resp := make([]MovieResponse, len(movies))
	for i, m := range movies {
		resp[i] = toMovieResponse(m)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetMovie godoc
// @Summary 映画を取得
// @Tags movies
// @Produce json
// @Param id path string true "映画ID"
// @Success 200 {object} MovieResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /movies/{id} [get]
func (h *TheaterHandler) GetMovie(c echo.Context) error {
	m, err := h.service.GetMovie(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.NewHTTPError(err)
	}
	return c.JSON(http.StatusOK, toMovieResponse(m))
}

// ScheduleTheater godoc
// @Summary 上映回を座席とともに作成
// @Tags theaters
// @Accept json
// @Produce json
// @Param id path string true "映画ID"
// @Param request body ScheduleTheaterRequest true "上映回情報"
// @Success 201 {object} TheaterResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /movies/{id}/theaters [post]
func (h *TheaterHandler) ScheduleTheater(c echo.Context) error {
	var req ScheduleTheaterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	showTime, err := time.Parse(time.RFC3339, req.ShowTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "上映時刻の形式が不正です")
	}

	t, seats, err := h.service.ScheduleTheater(c.Request().Context(), application.ScheduleTheaterInput{
		MovieID:     c.Param("id"),
		Name:        req.Name,
		ShowTime:    showTime,
		TicketPrice: req.TicketPrice,
		SeatNumbers: req.SeatNumbers,
		SeatPrefix:  req.SeatPrefix,
		SeatCount:   req.SeatCount,
	})
	if err != nil {
		return api.NewHTTPError(err)
	}

	resp := toTheaterResponse(t)
	resp.Seats = make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp.Seats[i] = toSeatResponse(s, seat.StateFree)
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListTheaters godoc
// @Summary 映画の上映回一覧を取得
// @Tags theaters
// @Produce json
// @Param id path string true "映画ID"
// @Success 200 {array} TheaterResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /movies/{id}/theaters [get]
func (h *TheaterHandler) ListTheaters(c echo.Context) error {
	theaters, err := h.service.ListTheaters(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.NewHTTPError(err)
	}
	resp := make([]TheaterResponse, len(theaters))
	for i, t := range theaters {
		resp[i] = toTheaterResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetTheater godoc
// @Summary 上映回を取得
// @Tags theaters
// @Produce json
// @Param id path string true "上映回ID"
// @Success 200 {object} TheaterResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /theaters/{id} [get]
func (h *TheaterHandler) GetTheater(c echo.Context) error {
	t, err := h.service.GetTheater(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.NewHTTPError(err)
	}
	return c.JSON(http.StatusOK, toTheaterResponse(t))
}

// DeleteTheater godoc
// @Summary 上映回を削除（座席・予約も削除）
// @Tags theaters
// @Param id path string true "上映回ID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /theaters/{id} [delete]
func (h *TheaterHandler) DeleteTheater(c echo.Context) error {
	if err := h.service.DeleteTheater(c.Request().Context(), c.Param("id")); err != nil {
		return api.NewHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
