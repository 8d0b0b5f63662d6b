// Package config persists the taskbar's panel profiles and daemon options
// through pluggable drivers.
package config

type Driver interface {
	Exists() (bool, error)
	Write(config Config) error
	Read() (Config, error)
}

func NewStore(driver Driver) (Store, error) {
	exists, err := driver.Exists()
	if err != nil {
		return Store{}, err
	}
	if !exists {
		if err := driver.Write(Normalize(defaultConfig)); err != nil {
			return Store{}, err
		}
	}

	return Store{
		driver: driver,
	}, nil
}

type Store struct {
	driver Driver
}

func (s *Store) GetConfig() (Config, error) {
	cfg, err := s.driver.Read()
	if err != nil {
		return Config{}, err
	}
	return Normalize(cfg), nil
}

func (s *Store) UpdateConfig(fn func(cfg Config) (Config, error)) error {
	cfg, err := s.driver.Read()
	if err != nil {
		return err
	}

	cfg, err = fn(Normalize(cfg))
	if err != nil {
		return err
	}

	return s.driver.Write(cfg)
}
