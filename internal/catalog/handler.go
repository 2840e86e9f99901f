package catalog

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"sunrisestay/internal/auth"
	"sunrisestay/internal/backend"
	"sunrisestay/internal/booking"
	"sunrisestay/internal/web"
)

const msgRoomsUnavailable = "We couldn't load our rooms right now. Please try again shortly."

type Handler struct {
	store     *Store
	bookings  booking.StoreResolver
	signInURL string
	now       func() time.Time
}

func NewHandler(store *Store, bookings booking.StoreResolver, signInURL string) *Handler {
	return &Handler{
		store:     store,
		bookings:  bookings,
		signInURL: signInURL,
		now:       time.Now,
	}
}

// BookingForm is the date and guest selection posted from the room page.
type BookingForm struct {
	CheckIn  string `form:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `form:"check_out" validate:"required,datetime=2006-01-02"`
	Adults   int    `form:"adults" validate:"gte=1"`
	Children int    `form:"children" validate:"gte=0"`
}

// Home renders the landing page. Rooms and hotel images load concurrently.
func (h *Handler) Home(c *gin.Context) {
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		h.store.EnsureRoomTypes(ctx)
		return nil
	})
	g.Go(func() error {
		h.store.FetchHotelImages(ctx)
		return nil
	})
	_ = g.Wait()

	web.Render(c, http.StatusOK, "home.html", gin.H{
		"Rooms":  h.store.RoomTypes(),
		"Images": h.store.Images(),
	})
}

func (h *Handler) Rooms(c *gin.Context) {
	h.store.EnsureRoomTypes(c.Request.Context())
	rooms := h.store.RoomTypes()

	data := gin.H{"Rooms": rooms}
	if len(rooms) == 0 {
		data["Error"] = msgRoomsUnavailable
	}
	web.Render(c, http.StatusOK, "rooms.html", data)
}

// lookup resolves the room named in the path, rendering the not-found page when it is unknown.
func (h *Handler) lookup(c *gin.Context) (RoomType, bool) {
	h.store.EnsureRoomTypes(c.Request.Context())
	if len(h.store.RoomTypes()) == 0 {
		web.Render(c, http.StatusServiceUnavailable, "room_not_found.html", gin.H{
			"Error": msgRoomsUnavailable,
		})
		return RoomType{}, false
	}

	room, err := h.store.FindRoom(c.Param("name"))
	if err != nil {
		web.Render(c, http.StatusNotFound, "room_not_found.html", gin.H{
			"Name": c.Param("name"),
		})
		return RoomType{}, false
	}
	return room, true
}

func (h *Handler) renderDetail(c *gin.Context, status int, room RoomType, form BookingForm, errs []string) {
	web.Render(c, status, "room_detail.html", gin.H{
		"Room":   room,
		"Form":   form,
		"Quote":  QuoteDates(room, form.CheckIn, form.CheckOut),
		"Today":  h.now().Format("2006-01-02"),
		"Errors": errs,
	})
}

// RoomDetail renders a room with a quote for the check_in/check_out query.
func (h *Handler) RoomDetail(c *gin.Context) {
	room, ok := h.lookup(c)
	if !ok {
		return
	}

	form := BookingForm{
		CheckIn:  c.Query("check_in"),
		CheckOut: c.Query("check_out"),
		Adults:   1,
	}
	h.renderDetail(c, http.StatusOK, room, form, nil)
}

// Book creates a pending booking for the selected stay and sends the
// visitor to the payment page.
func (h *Handler) Book(c *gin.Context) {
	room, ok := h.lookup(c)
	if !ok {
		return
	}

	var form BookingForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderDetail(c, http.StatusBadRequest, room, form, []string{"Please check the dates and number of guests."})
		return
	}
	if errs := web.ValidateStruct(form); len(errs) > 0 {
		h.renderDetail(c, http.StatusBadRequest, room, form, web.Messages(errs))
		return
	}

	if !QuoteDates(room, form.CheckIn, form.CheckOut).Bookable() {
		h.renderDetail(c, http.StatusBadRequest, room, form, []string{"Check-out must be after check-in."})
		return
	}
	var errs []string
	if form.Adults > room.AdultLimit() {
		errs = append(errs, fmt.Sprintf("This room sleeps at most %d adults.", room.AdultLimit()))
	}
	if form.Children > room.ChildLimit() {
		errs = append(errs, fmt.Sprintf("This room allows at most %d children.", room.ChildLimit()))
	}
	if len(errs) > 0 {
		h.renderDetail(c, http.StatusBadRequest, room, form, errs)
		return
	}

	store := h.bookings(c)
	err := store.CreateBooking(c.Request.Context(), booking.Selection{
		RoomTypeName: room.Name,
		CheckIn:      form.CheckIn,
		CheckOut:     form.CheckOut,
		Adults:       form.Adults,
		Children:     form.Children,
	})
	if err != nil {
		msg := store.Snapshot().Error
		store.ClearError()
		if backend.IsUnauthorized(err) {
			web.SetFlash(c, web.FlashError, msg)
			c.Redirect(http.StatusSeeOther, auth.SignInLocation(h.signInURL, "/rooms/"+url.PathEscape(room.Name)))
			return
		}
		h.renderDetail(c, backend.HTTPStatus(err), room, form, []string{msg})
		return
	}

	c.Redirect(http.StatusSeeOther, "/payment")
}
