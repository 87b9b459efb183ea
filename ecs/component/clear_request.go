package component

// ClearScenesRequest is a marker used to ask the spawn system to remove
// every scene instance from the world. Loads still in flight keep running.
type ClearScenesRequest struct{}

var ClearScenesRequestComponent = NewComponentKind[ClearScenesRequest]()
