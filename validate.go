package goodconf

// Validate checks the resolved state: every required field must have a value
// from some source and every supplied value must convert to its field type.
// All failures are reported together, in declaration order, as a
// *ValidationError.
func (c *Config) Validate() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	verr := &ValidationError{}
	for _, path := range c.order {
		item := c.items[path]
		switch {
		case item.err != nil:
			verr.add(path, item.err)
		case item.source == "" && item.field.Required:
			verr.add(path, ErrRequired)
		}
	}
	return verr.orNil()
}

// Missing returns the required paths that no source supplied, in declaration order.
func (c *Config) Missing() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var missing []string
	for _, path := range c.order {
		item := c.items[path]
		if item.source == "" && item.field.Required {
			missing = append(missing, path)
		}
	}
	return missing
}
