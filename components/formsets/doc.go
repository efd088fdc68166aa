// Package formsets exposes subform groups over net/http.
//
// The rows handler answers add-row clicks with the next row fragment and the
// new counter value in the X-Formset-Total header, or 409 when the group is
// full. The previews handler checks a multipart file selection against the
// upload rules and returns JSON thumbnails, or 422 with the violation notice.
package formsets
