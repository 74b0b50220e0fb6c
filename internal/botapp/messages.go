package botapp

// User-facing texts. Kept in one place so flows stay free of copy.
const (
	msgWelcome      = "Welcome to the ordering bot!"
	msgUnknownText  = "Use /start to begin, or open a product from the channel."
	msgAdminOnly    = "This command is available to the administrator only."
	msgInvalidStart = "Invalid command or product ID."

	msgAskName        = "Please send the product name."
	msgAskDescription = "Please send the product description."
	msgAskImage       = "Please send the product image URL."
	msgBadImageURL    = "That does not look like a valid URL. Please send the product image URL."
	msgProductAdded   = "Product has been added and posted to the channel!"
	msgProductFailed  = "Could not create the product, please try again later."
	msgCancelled      = "Cancelled."
	msgNothingToDo    = "Nothing to cancel."

	msgProductMissing = "Sorry, the product does not exist."
	msgOrderProblem   = "There was a problem confirming your order, please try again later."
	msgBadConfirm     = "Invalid confirmation data."
	msgStaleAction    = "This order was already processed."
)
