package internal

/*
	watcher --> recursive change notification over a base directory, built on fsnotify.
	event --> our own op bits, so callers never import fsnotify directly.

	** Usage
	1 - create a watcher over the base directory.
	2 - subscribe hooks with WithCallbackFunction, every hook sees every event.
	3 - Close delivers one exit event to each hook and waits for them.

	the storage registry owns exactly one watcher per base directory and routes
	events to handles by absolute path.
*/
