// Package dashboard loads the page configuration and opens pages on the Core.
//
// Pages are described in a JSON file. Each page is a list of tiles; each
// tile has a type and a map of bindings from a binding name to a data point
// id:
//
//	{
//	  "pages": [
//	    {
//	      "name": "living",
//	      "title": "Living room",
//	      "tiles": [
//	        {
//	          "id": "ceiling",
//	          "type": "light",
//	          "label": "Ceiling",
//	          "bindings": {"state": "living.light", "dimmer": "living.dimmer", "unreach": "living.light.unreach"}
//	        }
//	      ]
//	    }
//	  ]
//	}
//
// Build turns a page into a view.Document and the list of Core interests.
// Service keeps the parsed file, opens pages by name, re-opens the current
// page after a hard reload and can watch the file with fsnotify.
package dashboard
