package widget

import (
	"fmt"

	"github.com/trustimonials/trustimonials-backend/types"
)

// BootstrapScript produces the per-widget loader a site owner pastes into
// their page. It injects an iframe pointing at the embed document and resizes
// it on trustimonials-resize messages. The script fetches no data itself;
// everything happens server-side before the iframe document is produced.
func BootstrapScript(widgetType types.WidgetType, widgetID, baseURL string) string {
	containerID := fmt.Sprintf("trustimonials-%s-%s", widgetType, widgetID)
	embedURL := fmt.Sprintf("%s/embed/%s/%s", baseURL, widgetType, widgetID)

	return fmt.Sprintf(`(function() {
  var containerId = %q;
  var widgetId = %q;
  var container = document.getElementById(containerId);
  if (!container) {
    if (window.console && console.warn) {
      console.warn("Trustimonials: container #" + containerId + " not found");
    }
    return;
  }
  var iframe = document.createElement("iframe");
  iframe.src = %q;
  iframe.style.width = "100%%";
  iframe.style.border = "none";
  iframe.style.minHeight = "200px";
  iframe.setAttribute("loading", "lazy");
  iframe.setAttribute("title", "Testimonials");
  container.appendChild(iframe);
  window.addEventListener("message", function(event) {
    var data = event.data;
    if (data && data.type === "trustimonials-resize" && data.widgetId === widgetId) {
      iframe.style.height = data.height + "px";
    }
  });
})();
`, containerID, widgetID, embedURL)
}

// BootstrapNoop is served in place of the loader when the widget is missing
// or private. A comment keeps the host page's script tag harmless.
func BootstrapNoop() string {
	return "// Widget not found\n"
}
