package apperrors

// Code is a machine-readable error code. The values match the exception
// names exposed by the scrapper API so existing clients keep working.
type Code string

const (
	// CodeChatAlreadyRegistered indicates the Telegram chat is already registered.
	CodeChatAlreadyRegistered Code = "AlreadyRegisteredChatException"
	// CodeChatNotRegistered indicates the Telegram chat is unknown.
	CodeChatNotRegistered Code = "ChatIsNotRegisteredException"
	// CodeLinkNotFound indicates the chat does not track the given URL.
	CodeLinkNotFound Code = "LinkIsNotFoundException"
	// CodeLinkAlreadyTracked indicates the URL is already tracked by the chat.
	CodeLinkAlreadyTracked Code = "UrlIsAlreadyFollowed"
	// CodeTagAlreadyExists indicates the tag is already attached to the link.
	CodeTagAlreadyExists Code = "TagAlreadyExistsException"
	// CodeTagNotFound indicates the link has no such tag.
	CodeTagNotFound Code = "LinkWithTagIsNotFound"
	// CodeURLNotSupported indicates the URL does not belong to a known source.
	CodeURLNotSupported Code = "UrlIsNotSupportedException"
	// CodeUnsupportedFilter indicates a filter is not in key:value form.
	CodeUnsupportedFilter Code = "NotSupportedTypeOfFilter"
	// CodeResourceNotFound indicates the upstream resource does not exist.
	CodeResourceNotFound Code = "ResourceIsNotFoundException"
	// CodeUpstreamError indicates a non-2xx answer from an upstream API.
	CodeUpstreamError Code = "NotSuccessfulResponseException"
	// CodeBadChatID indicates a missing or non-numeric Telegram chat id.
	CodeBadChatID Code = "InvalidChatIdException"
	// CodeBadTimeFormat indicates a notify time not in HH:MM form.
	CodeBadTimeFormat Code = "UnsupportedTimeFormatException"
	// CodeInternal indicates an unexpected server-side failure.
	CodeInternal Code = "UnknownException"
)
